// Package realtime pushes wallet events to connected websocket clients.
package realtime

import (
	"encoding/json" // Payload encoding
	"sync"          // Connection map guard
	"time"          // Write deadlines

	"github.com/gorilla/websocket" // Websocket connections
	"github.com/sirupsen/logrus"   // Logging library
)

// Event types pushed to clients
const (
	EventMoneyReceived = "money_received"
	EventBalanceUpdate = "balance_update"
)

// writeWait bounds a single write to a client
const writeWait = 5 * time.Second

// Event is one message on the wire
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// client serialises writes to one connection
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // One writer at a time
}

// write sends payload within writeWait
func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks the open connections of each profile
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]*client // Profile id -> connections
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]*client)}
}

// Register adds a connection for a profile
func (h *Hub) Register(profileID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[profileID] == nil {
		h.clients[profileID] = make(map[*websocket.Conn]*client)
	}
	h.clients[profileID][conn] = &client{conn: conn}
}

// Unregister removes and closes a connection
func (h *Hub) Unregister(profileID string, conn *websocket.Conn) {
	h.mu.Lock()
	conns, ok := h.clients[profileID]
	if !ok || conns[conn] == nil {
		h.mu.Unlock()
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, profileID)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Connections reports how many clients a profile has open
func (h *Hub) Connections(profileID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[profileID])
}

// snapshot copies the connections of a profile under the lock
func (h *Hub) snapshot(profileID string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients[profileID]))
	for _, c := range h.clients[profileID] {
		out = append(out, c)
	}
	return out
}

// Publish writes ev to every connection of a profile. Writes happen outside the
// hub lock; connections that fail are dropped afterwards. It returns the number
// of clients reached.
func (h *Hub) Publish(profileID string, ev Event) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode realtime event")
		return 0
	}
	sent := 0
	var failed []*websocket.Conn
	for _, c := range h.snapshot(profileID) {
		if err := c.write(payload); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": profileID,  // Owner of the connection
				"error":   err.Error(), // Write failure
			}).Warn("Dropping realtime client")
			failed = append(failed, c.conn)
			continue
		}
		sent++
	}
	for _, conn := range failed {
		h.Unregister(profileID, conn)
	}
	return sent
}
