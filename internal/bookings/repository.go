package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for booking data operations
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]BookingDetail, error)
	ListAll(ctx context.Context) ([]BookingDetail, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// MarkCancelled flips a confirmed booking to cancelled inside tx and
	// reports whether this call did the flip.
	MarkCancelled(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)

	CountConfirmed(tx *gorm.DB, eventID uuid.UUID) (int64, error)
	DeleteByEvent(tx *gorm.DB, eventID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const detailColumns = "bookings.*, events.title AS title, events.location AS location, events.date AS date"

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	var details []BookingDetail
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select(detailColumns).
		Joins("JOIN events ON events.id = bookings.event_id").
		Where("bookings.id = ?", id).
		Limit(1).
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if len(details) == 0 {
		return nil, ErrBookingNotFound
	}
	return &details[0], nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]BookingDetail, error) {
	details := []BookingDetail{}
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select(detailColumns).
		Joins("JOIN events ON events.id = bookings.event_id").
		Where("bookings.user_id = ?", userID).
		Order("bookings.created_at DESC").
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return details, nil
}

func (r *repository) ListAll(ctx context.Context) ([]BookingDetail, error) {
	details := []BookingDetail{}
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("bookings.*, events.title AS title, users.name AS user_name").
		Joins("JOIN events ON events.id = bookings.event_id").
		Joins("JOIN users ON users.id = bookings.user_id").
		Order("bookings.created_at DESC").
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return details, nil
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) MarkCancelled(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	result := tx.Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusConfirmed).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CountConfirmed(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&Booking{}).
		Where("event_id = ? AND status = ?", eventID, StatusConfirmed).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *repository) DeleteByEvent(tx *gorm.DB, eventID uuid.UUID) error {
	if err := tx.Where("event_id = ?", eventID).Delete(&Booking{}).Error; err != nil {
		return fmt.Errorf("failed to delete bookings: %w", err)
	}
	return nil
}
