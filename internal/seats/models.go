package seats

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLockTTL is how long a soft lock survives without an explicit release.
const DefaultLockTTL = 5 * time.Minute

// SeatLock is a provisional claim on a number of seats of one event, held by
// one user while their booking attempt is in flight. It never reserves seats
// by itself; the committed counter on the event is authoritative.
type SeatLock struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index:idx_seat_locks_event_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_seat_locks_event_user"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *SeatLock) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Active reports whether the lock still counts at instant now.
func (l *SeatLock) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}

func (SeatLock) TableName() string {
	return "seat_locks"
}
