package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/model"
)

// StatusEvent kegiatan status change pushed to connected clients
type StatusEvent struct {
	KegiatanID uint      `json:"kegiatan_id"`
	Status     string    `json:"status"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}

// Hub manages all WebSocket connections
type Hub struct {
	clients map[*Client]bool

	// subscribers are channel-only listeners (SSE streams)
	subscribers map[chan []byte]bool

	// Broadcast delivers a message to every connected client
	Broadcast chan []byte

	// Register adds a new client
	Register chan *Client

	// Unregister removes a client
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[chan []byte]bool),
		Broadcast:   make(chan []byte, 64),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events; call in a goroutine
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			for sub := range h.subscribers {
				select {
				case sub <- message:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyStatusChange broadcasts a kegiatan status change. Implements the
// service layer's StatusNotifier. Dropped when the broadcast queue is full
// rather than blocking a request.
func (h *Hub) NotifyStatusChange(kegiatanID uint, status model.Status, actor string) {
	event := StatusEvent{
		KegiatanID: kegiatanID,
		Status:     string(status),
		Actor:      actor,
		At:         time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- payload:
	default:
	}
}

// BroadcastToUser sends a message to one user's connections only
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// Subscribe registers a channel-only listener; messages are dropped when
// the channel is full. Used by the SSE stream.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.subscribers[ch] = true
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener registered with Subscribe
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// GetClientCount number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
