package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, query EventListQuery) ([]Event, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Event, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}, totalSeats *int) (*Event, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// CommitDecrement takes quantity seats off the committed counter and
	// reports the affected row count: 0 means the guard refused.
	CommitDecrement(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	RestoreSeats(tx *gorm.DB, id uuid.UUID, quantity int) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func getByID(db *gorm.DB, id uuid.UUID) (*Event, error) {
	var event Event
	if err := db.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, query EventListQuery) ([]Event, error) {
	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Location != "" {
		db = db.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(query.Location)+"%")
	}

	if query.Date != "" {
		day, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date filter %q: %w", query.Date, err)
		}
		db = db.Where("date >= ? AND date < ?", day, day.Add(24*time.Hour))
	}

	if query.Search != "" {
		term := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var events []Event
	if err := db.Order("date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events by creator: %w", err)
	}
	return events, nil
}

// Update applies metadata changes and, when totalSeats is set, moves
// available_seats by the same delta in one statement. The WHERE clause rejects
// a total smaller than the seats already sold.
func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}, totalSeats *int) (*Event, error) {
	var updated *Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if totalSeats != nil {
			result := tx.Model(&Event{}).
				Where("id = ? AND total_seats - available_seats <= ?", id, *totalSeats).
				Updates(map[string]interface{}{
					"total_seats":     *totalSeats,
					"available_seats": gorm.Expr("available_seats + ? - total_seats", *totalSeats),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to resize event: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				if _, err := getByID(tx, id); err != nil {
					return err
				}
				return ErrCapacityBelowSold
			}
		}

		if len(updates) > 0 {
			result := tx.Model(&Event{}).Where("id = ?", id).Updates(updates)
			if result.Error != nil {
				return fmt.Errorf("failed to update event: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrEventNotFound
			}
		}

		event, err := getByID(tx, id)
		if err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// CommitDecrement is the hard capacity guard. The check and the decrement are
// one conditional UPDATE, so concurrent callers can never drive the counter
// below zero.
func (r *repository) CommitDecrement(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND available_seats >= ?", id, quantity).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to commit seats: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RestoreSeats returns seats inside the caller's transaction, never past
// total_seats.
func (r *repository) RestoreSeats(tx *gorm.DB, id uuid.UUID, quantity int) error {
	result := tx.Model(&Event{}).
		Where("id = ? AND available_seats + ? <= total_seats", id, quantity).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := getByID(tx, id); err != nil {
			return err
		}
		return ErrSeatOverflow
	}
	return nil
}

func (r *repository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	result := tx.Where("id = ?", id).Delete(&Event{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
