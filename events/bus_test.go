package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishRoutesByTable(t *testing.T) {
	bus := NewBus()

	categoryEvents := make(chan ChangeEvent, 1)
	bus.Subscribe([]string{"categories"}, func(evt ChangeEvent) {
		categoryEvents <- evt
	})

	allEvents := make(chan ChangeEvent, 2)
	bus.Subscribe(nil, func(evt ChangeEvent) {
		allEvents <- evt
	})

	bus.Publish(ChangeEvent{Table: "products", ChatID: "chat-1", Action: ActionInsert})
	bus.Publish(ChangeEvent{Table: "categories", ChatID: "chat-1", Action: ActionReplace})

	select {
	case evt := <-categoryEvents:
		assert.Equal(t, "categories", evt.Table)
		assert.Equal(t, ActionReplace, evt.Action)
	case <-time.After(time.Second):
		t.Fatal("table-scoped subscriber did not receive its event")
	}

	received := 0
	timeout := time.After(time.Second)
	for received < 2 {
		select {
		case <-allEvents:
			received++
		case <-timeout:
			t.Fatalf("catch-all subscriber received %d of 2 events", received)
		}
	}

	select {
	case evt := <-categoryEvents:
		t.Fatalf("table-scoped subscriber received a foreign event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	events := make(chan ChangeEvent, 1)
	id := bus.Subscribe([]string{"products"}, func(evt ChangeEvent) {
		events <- evt
	})
	bus.Unsubscribe(id)

	bus.Publish(ChangeEvent{Table: "products", Action: ActionInsert})

	select {
	case <-events:
		t.Fatal("unsubscribed handler was invoked")
	case <-time.After(50 * time.Millisecond):
	}
}
