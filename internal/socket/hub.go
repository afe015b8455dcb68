// Package socket pushes realtime stock alerts to connected dashboards.
package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks the open websocket connections, keyed by user id. Organisations
// connect their dashboard here to receive low-stock alerts as they happen.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		log:     log,
	}
}

// Register adds a client connection, replacing any previous one for the user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[userID]; ok {
		old.Close()
	}
	h.clients[userID] = conn
	h.log.Debugw("websocket client registered", "user", userID)
}

// Unregister removes a client connection.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		h.log.Debugw("websocket client unregistered", "user", userID)
	}
}

// Send writes a message to one user's connection. An offline user is not an
// error; the alert simply goes nowhere.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[userID]
	if !ok {
		h.log.Debugw("websocket client offline, message dropped", "user", userID)
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}
