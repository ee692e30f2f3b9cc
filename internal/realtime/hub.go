package realtime

import (
	"context"
	"sync"

	"eventbook/pkg/logger"

	"github.com/google/uuid"
)

// Client is one connected stream. Its Messages channel is closed on Disconnect.
type Client struct {
	ID   uuid.UUID
	send chan Message
}

func (c *Client) Messages() <-chan Message {
	return c.send
}

// Hub keeps per-event channel membership for the clients connected to this
// process. Delivery is best effort: a client whose buffer is full misses the
// update, the next one carries the full counts anyway.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	rooms   map[string]map[uuid.UUID]*Client
	buffer  int
	log     *logger.Logger
}

func NewHub(buffer int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		rooms:   make(map[string]map[uuid.UUID]*Client),
		buffer:  buffer,
		log:     log,
	}
}

// Connect registers a new client with no channel memberships.
func (h *Hub) Connect() *Client {
	c := &Client{ID: uuid.New(), send: make(chan Message, h.buffer)}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	return c
}

// Disconnect drops the client from every channel and closes its stream.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for eventID, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, eventID)
		}
	}
	close(c.send)
}

// Join adds the client to the event's channel. Joining twice is a no-op.
func (h *Hub) Join(clientID uuid.UUID, eventID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	members, ok := h.rooms[eventID]
	if !ok {
		members = make(map[uuid.UUID]*Client)
		h.rooms[eventID] = members
	}
	members[clientID] = c
	return nil
}

// Leave removes the client from the event's channel. Leaving a channel the
// client is not in is a no-op.
func (h *Hub) Leave(clientID uuid.UUID, eventID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[clientID]; !ok {
		return ErrClientNotFound
	}
	if members, ok := h.rooms[eventID]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, eventID)
		}
	}
	return nil
}

// Members returns the number of clients in the event's channel.
func (h *Hub) Members(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

// Broadcast queues the update for every member of its event channel and
// returns how many clients accepted it.
func (h *Hub) Broadcast(update SeatUpdate) int {
	msg := Message{Event: MessageSeatUpdate, Data: update}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, c := range h.rooms[update.EventID] {
		select {
		case c.send <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Publish implements Publisher for a single process.
func (h *Hub) Publish(ctx context.Context, update SeatUpdate) error {
	delivered := h.Broadcast(update)
	h.log.LogSeatUpdate(ctx, update.EventID, update.AvailableSeats, update.TrulyAvailable, update.TotalSeats, delivered)
	return nil
}
