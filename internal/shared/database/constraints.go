package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Indexes backing the hot queries: the active-lock sum and the confirmed
// booking count per event.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_seat_locks_event_expiry
		ON seat_locks (event_id, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_event_status
		ON bookings (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_created
		ON bookings (user_id, created_at)`,
}

// MigrateConstraints adds indexes gorm tags cannot express.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
