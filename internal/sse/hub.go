package sse

import (
	"context"
	"sync"

	"notify_hub/internal/model"
)

// Client is one live SSE connection for one user. A user may hold several
// concurrent connections (multiple tabs or devices).
type Client struct {
	UserID int64
	Ch     chan model.RealtimeEvent
}

// Hub routes realtime events to the currently connected clients of the
// addressed user. Events for users with no live connection are dropped;
// this channel has no persistence or replay.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.RealtimeEvent
	users      map[int64]map[*Client]struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.RealtimeEvent, 64),
		users:      make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Publish(event model.RealtimeEvent) {
	h.broadcast <- event
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.users[client.UserID]
	if clients == nil {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.users, client.UserID)
	}
}

func (h *Hub) deliver(event model.RealtimeEvent) {
	h.mu.RLock()
	clients := h.users[event.UserID]
	h.mu.RUnlock()
	for client := range clients {
		select {
		case client.Ch <- event:
		default:
			// Drop if the client is too slow.
		}
	}
}
