package bookings

import (
	"errors"
	"time"

	"eventbook/internal/events"
	"eventbook/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrEventNotFound           = events.ErrEventNotFound
	ErrInsufficientSeats       = errors.New("Not enough seats available")
	ErrBookingNotFound         = errors.New("Booking not found")
	ErrAccessDenied            = errors.New("Access denied")
	ErrBookingAlreadyCancelled = errors.New("Booking is already cancelled")
	ErrInternal                = errors.New("Internal server error")
)

// Booking is created only after the committed seat counter was decremented.
// TotalAmount is fixed at booking time.
type Booking struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"not null;size:255"`
	Email       string     `json:"email" gorm:"not null;size:255"`
	Mobile      string     `json:"mobile" gorm:"not null;size:32"`
	Quantity    int        `json:"quantity" gorm:"not null;check:chk_bookings_quantity,quantity > 0"`
	TotalAmount float64    `json:"total_amount" gorm:"not null"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'confirmed';index"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"booking_date" gorm:"autoCreateTime"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = StatusConfirmed
	}
	return nil
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingDetail is a booking joined with the event and, for admin listings,
// the account that made it.
type BookingDetail struct {
	Booking
	Title    string     `json:"title"`
	Location string     `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	UserName string     `json:"user_name,omitempty"`
}

// Requester is the caller of an access-controlled booking operation.
type Requester struct {
	UserID uuid.UUID
	Role   users.Role
}

// CanAccess reports whether the requester owns b or is an admin.
func (r Requester) CanAccess(b *Booking) bool {
	return b.UserID == r.UserID || r.Role.IsAdmin()
}
