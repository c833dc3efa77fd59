package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/workflow"
)

// Frame is what a dashboard receives for every event. Several frames may
// announce the same order version; Seq orders them.
type Frame struct {
	Event      string          `json:"event"`
	EventID    string          `json:"eventId"`
	Seq        uint            `json:"seq"`
	OrderID    *uint           `json:"orderId,omitempty"`
	Version    uint            `json:"version,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Newer reports whether f should replace what a client already holds for
// the order. An older version is stale; an equal version is stale only when
// the frame was already seen.
func (f Frame) Newer(heldVersion, heldSeq uint) bool {
	if f.Version != heldVersion {
		return f.Version > heldVersion
	}
	return f.Seq > heldSeq
}

// Hub maintains the set of connected dashboards and routes events to them
// by user id and account type.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			log.Printf("Dashboard connected: user %d (%s)", client.UserID, client.Role)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Dashboard disconnected: user %d", client.UserID)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected dashboards
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Name identifies the hub in relay errors
func (h *Hub) Name() string { return "websocket" }

// Deliver pushes a committed outbox event to every matching client. Slow
// clients whose buffer is full miss the frame; they catch up from the REST
// API using the order version on reconnect.
func (h *Hub) Deliver(_ context.Context, event *models.OutboxEvent) error {
	frame, err := json.Marshal(Frame{
		Event:      event.EventType,
		EventID:    event.EventID,
		Seq:        event.ID,
		OrderID:    event.OrderID,
		Version:    event.OrderVersion,
		OccurredAt: event.CreatedAt,
		Data:       json.RawMessage(event.Payload),
	})
	if err != nil {
		return err
	}

	recipients := event.Recipients.Data()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.matches(recipients) {
			continue
		}
		select {
		case client.send <- frame:
		default:
			log.Printf("Dropping %s frame for user %d: send buffer full", event.EventType, client.UserID)
		}
	}
	return nil
}

func (c *Client) matches(r models.EventRecipients) bool {
	for _, id := range r.Users {
		if id == c.UserID {
			return true
		}
	}
	for _, role := range r.Roles {
		if role == c.Role {
			return true
		}
		if role == workflow.Admin && c.Role == workflow.SuperAdmin {
			return true
		}
	}
	return false
}
