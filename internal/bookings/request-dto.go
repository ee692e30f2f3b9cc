package bookings

import "github.com/google/uuid"

type CreateBookingRequest struct {
	EventID  uuid.UUID `json:"event_id" validate:"required"`
	Name     string    `json:"name" validate:"required,min=2,max=255"`
	Email    string    `json:"email" validate:"required,email,max=255"`
	Mobile   string    `json:"mobile" validate:"required,min=7,max=20"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}
