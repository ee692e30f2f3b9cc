package database

import (
	"eventbook/internal/bookings"
	"eventbook/internal/events"
	"eventbook/internal/seats"
	"eventbook/internal/users"

	"gorm.io/gorm"
)

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&users.User{},
		&events.Event{},
		&seats.SeatLock{},
		&bookings.Booking{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
