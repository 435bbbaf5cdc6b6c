// Package websocket pushes session lifecycle events to a user's open
// connections.
package websocket

import (
	"log/slog"
	"sync"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
)

const eventBuffer = 256

// Hub tracks connections per user and fans session events out to them.
// All membership changes happen on the Run goroutine.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan domain.SessionEvent
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{} // closed when Run() exits
	stopped    bool
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan domain.SessionEvent, eventBuffer),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.Lock()
			h.deliver(ev)
			h.mu.Unlock()
		}
	}
}

// deliver sends ev to every connection of the user. Connections whose
// device was revoked are closed after the event; a revocation without a
// device closes all of them.
func (h *Hub) deliver(ev domain.SessionEvent) {
	for client := range h.clients[ev.UserID] {
		if !client.Send(MessageTypeSessionEvent, ev) {
			h.logger.Warn("websocket client too slow, dropping", "user_id", ev.UserID)
			h.remove(client)
			continue
		}
		if ev.Type == domain.SessionRevoked && (ev.Device == domain.DeviceFingerprint{} || client.device == ev.Device) {
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	client.Close()
}

// Stop closes every connection and blocks until Run has returned. It is
// safe to call more than once, from any goroutine.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Register adds client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishSessionEvent queues ev for delivery without blocking the caller.
// Events are dropped when the queue is full or the hub has stopped.
func (h *Hub) PublishSessionEvent(ev domain.SessionEvent) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.events <- ev:
	default:
		h.logger.Warn("session event dropped", "type", ev.Type, "user_id", ev.UserID)
	}
}

// ConnectionCount returns the number of open connections of userID.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
