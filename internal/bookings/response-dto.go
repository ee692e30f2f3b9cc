package bookings

import "github.com/google/uuid"

// BookingResult is the flat body returned by POST /bookings.
type BookingResult struct {
	Message     string    `json:"message"`
	BookingID   uuid.UUID `json:"bookingId"`
	TotalAmount float64   `json:"total_amount"`
}
