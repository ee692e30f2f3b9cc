package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("Event not found")
	ErrCapacityBelowSold = errors.New("total seats cannot drop below seats already booked")
	ErrEventHasBookings  = errors.New("event has confirmed bookings")
	ErrSeatOverflow      = errors.New("restoring seats would exceed event capacity")
)

// Event is the catalog row. AvailableSeats is the committed counter: it only
// moves through guarded UPDATE statements so it stays within [0, TotalSeats].
type Event struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title          string    `json:"title" gorm:"not null;size:255"`
	Description    string    `json:"description" gorm:"type:text"`
	Location       string    `json:"location" gorm:"not null;size:255;index"`
	Date           time.Time `json:"date" gorm:"not null;index"`
	TotalSeats     int       `json:"total_seats" gorm:"not null;check:chk_events_total_seats,total_seats > 0"`
	AvailableSeats int       `json:"available_seats" gorm:"not null;check:chk_events_available_seats,available_seats >= 0 AND available_seats <= total_seats"`
	Price          float64   `json:"price" gorm:"not null;default:0;check:chk_events_price,price >= 0"`
	ImageURL       string    `json:"image_url" gorm:"size:500"`
	CreatedBy      uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BookedSeats is the number of seats held by confirmed bookings.
func (e *Event) BookedSeats() int {
	return e.TotalSeats - e.AvailableSeats
}

func (Event) TableName() string {
	return "events"
}
