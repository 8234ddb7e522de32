package events

import (
	"fmt"
	"log"
	"sync"
)

// Action describes what happened to the rows of a table.
type Action string

const (
	ActionInsert  Action = "insert"
	ActionUpdate  Action = "update"
	ActionReplace Action = "replace"
)

// ChangeEvent is a table-level change notification. Subscribers are expected
// to re-query; the event carries no row data.
type ChangeEvent struct {
	Table  string `json:"table"`
	ChatID string `json:"chat_id,omitempty"`
	Action Action `json:"action"`
}

// Handler is a function that handles change events.
type Handler func(evt ChangeEvent)

type subscription struct {
	id      string
	tables  []string
	handler Handler
}

// Bus routes table-level change events to subscribers. Handlers run on their
// own goroutines so a slow subscriber cannot block a write path.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	nextID        int
}

// NewBus creates a new change-event bus.
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe registers a handler for events on the given tables. An empty
// table list matches every table. Returns the subscription ID.
func (b *Bus) Subscribe(tables []string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := fmt.Sprintf("sub-%d", b.nextID)
	b.subscriptions[id] = &subscription{
		id:      id,
		tables:  tables,
		handler: handler,
	}

	log.Printf("INFO: [EventBus] New subscription %s for tables %v.", id, tables)
	return id
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, id)
	log.Printf("INFO: [EventBus] Removed subscription %s.", id)
}

// Publish sends an event to all matching subscribers.
func (b *Bus) Publish(evt ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscriptions {
		if matches(evt.Table, sub.tables) {
			go sub.handler(evt)
		}
	}
}

func matches(table string, tables []string) bool {
	if len(tables) == 0 {
		return true
	}
	for _, t := range tables {
		if t == table {
			return true
		}
	}
	return false
}
