package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type client struct {
	conn *websocket.Conn
	role string
}

// Hub tracks connected WebSocket clients keyed by user id and supports
// broadcasting to every client holding a given role.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register adds a client connection to the hub.
func (h *Hub) Register(userID, role string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = &client{conn: conn, role: role}
	log.Debug().Str("userId", userID).Str("role", role).Msg("websocket client registered")
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Debug().Str("userId", userID).Msg("websocket client unregistered")
	}
}

// Send delivers a message to one client. A missing client is not an error;
// the user is simply offline.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cl, ok := h.clients[userID]
	if !ok {
		return nil
	}
	return cl.conn.WriteMessage(websocket.TextMessage, message)
}

// Broadcast sends a message to every connected client with the given role.
// Write failures are logged and skipped so one dead connection cannot block
// the rest.
func (h *Hub) Broadcast(role string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, cl := range h.clients {
		if cl.role != role {
			continue
		}
		if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("websocket broadcast failed")
		}
	}
}
