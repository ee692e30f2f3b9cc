package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbook/internal/bookings"
	"eventbook/internal/events"
	"eventbook/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the analytics repository interface
type Repository interface {
	GetOverview(ctx context.Context, now time.Time) (*Overview, error)
	GetTopEvents(ctx context.Context, limit int) ([]EventPerformance, error)
	GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new analytics repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOverview(ctx context.Context, now time.Time) (*Overview, error) {
	db := r.db.WithContext(ctx)
	var overview Overview

	if err := db.Model(&events.Event{}).Count(&overview.TotalEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	if err := db.Model(&events.Event{}).Where("date > ?", now).Count(&overview.UpcomingEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count upcoming events: %w", err)
	}
	if err := db.Model(&users.User{}).Count(&overview.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totals, err := r.totalsByStatus(db.Model(&bookings.Booking{}))
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		switch bookings.Status(t.Status) {
		case bookings.StatusConfirmed:
			overview.ConfirmedBookings = t.Bookings
			overview.SeatsSold = t.Seats
			overview.TotalRevenue = t.Revenue
		case bookings.StatusCancelled:
			overview.CancelledBookings = t.Bookings
		}
	}
	overview.CancellationRate = percent(float64(overview.CancelledBookings), float64(overview.ConfirmedBookings+overview.CancelledBookings))

	return &overview, nil
}

func (r *repository) GetTopEvents(ctx context.Context, limit int) ([]EventPerformance, error) {
	var top []EventPerformance
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			events.id AS event_id,
			events.title AS title,
			events.total_seats AS total_seats,
			COALESCE(SUM(bookings.quantity), 0) AS seats_sold,
			COALESCE(SUM(bookings.total_amount), 0) AS revenue
		FROM events
		LEFT JOIN bookings ON bookings.event_id = events.id AND bookings.status = ?
		GROUP BY events.id, events.title, events.total_seats
		ORDER BY seats_sold DESC, events.title ASC
		LIMIT ?
	`, bookings.StatusConfirmed, limit).Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top events: %w", err)
	}

	for i := range top {
		top[i].Utilization = percent(float64(top[i].SeatsSold), float64(top[i].TotalSeats))
	}
	return top, nil
}

func (r *repository) GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error) {
	db := r.db.WithContext(ctx)

	var event events.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, events.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	analytics := EventAnalytics{
		EventID:        event.ID,
		Title:          event.Title,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: event.AvailableSeats,
	}

	totals, err := r.totalsByStatus(db.Model(&bookings.Booking{}).Where("event_id = ?", eventID))
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		switch bookings.Status(t.Status) {
		case bookings.StatusConfirmed:
			analytics.ConfirmedBookings = t.Bookings
			analytics.SeatsSold = t.Seats
			analytics.Revenue = t.Revenue
		case bookings.StatusCancelled:
			analytics.CancelledBookings = t.Bookings
		}
	}
	analytics.Utilization = percent(float64(analytics.SeatsSold), float64(analytics.TotalSeats))
	analytics.CancellationRate = percent(float64(analytics.CancelledBookings), float64(analytics.ConfirmedBookings+analytics.CancelledBookings))

	return &analytics, nil
}

func (r *repository) totalsByStatus(query *gorm.DB) ([]statusTotals, error) {
	var totals []statusTotals
	err := query.
		Select("status, COUNT(*) AS bookings, COALESCE(SUM(quantity), 0) AS seats, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("status").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	return totals, nil
}
