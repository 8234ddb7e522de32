package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/infurnex/product-chat-connect/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is already wide open for the REST surface
	},
}

const (
	realtimeSendBuffer = 16
	writeWait          = 10 * time.Second
	pingPeriod         = 30 * time.Second
)

// RealtimeHandler upgrades the connection to a WebSocket and streams JSON
// change events for the categories and products tables. A chat_id query
// parameter narrows the stream to one chat; events without a chat scope are
// always forwarded. Clients re-fetch on every event; no row data is carried.
func (h *APIHandler) RealtimeHandler(c *gin.Context) {
	chatFilter := c.Query("chat_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: [Realtime] WebSocket upgrade failed: %v", err)
		return
	}

	send := make(chan events.ChangeEvent, realtimeSendBuffer)
	var subID string
	subID = h.bus.Subscribe([]string{"categories", "products"}, func(evt events.ChangeEvent) {
		if chatFilter != "" && evt.ChatID != "" && evt.ChatID != chatFilter {
			return
		}
		select {
		case send <- evt:
		default:
			// Client is not draining; drop rather than block the bus.
			log.Printf("WARN: [Realtime] Dropped change event for slow client (subscription %s).", subID)
		}
	})
	log.Printf("INFO: [Realtime] Client connected (subscription %s, chat filter '%s').", subID, chatFilter)

	done := make(chan struct{})

	// Read loop exists only to observe the close handshake.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.bus.Unsubscribe(subID)
		conn.Close()
		log.Printf("INFO: [Realtime] Client disconnected (subscription %s).", subID)
	}()

	for {
		select {
		case evt := <-send:
			payload, err := json.Marshal(evt)
			if err != nil {
				log.Printf("ERROR: [Realtime] Failed to marshal change event: %v", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
