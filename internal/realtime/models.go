package realtime

import (
	"context"
	"errors"
)

const (
	MessageConnected  = "connected"
	MessageSeatUpdate = "seat-update"
)

var ErrClientNotFound = errors.New("realtime client not found")

// SeatUpdate is the payload pushed to every member of an event channel.
type SeatUpdate struct {
	EventID        string `json:"eventId"`
	AvailableSeats int    `json:"available_seats"`
	TrulyAvailable int    `json:"truly_available"`
	TotalSeats     int    `json:"total_seats"`
}

// Message is one frame queued for a client.
type Message struct {
	Event string
	Data  interface{}
}

// Publisher fans a seat update out to the subscribers of its event.
type Publisher interface {
	Publish(ctx context.Context, update SeatUpdate) error
}

type JoinRequest struct {
	EventID string `json:"event_id" validate:"required"`
}
