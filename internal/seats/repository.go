package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbook/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidQuantity = errors.New("lock quantity must be positive")

// Repository is the soft lock store. Expired locks are removed lazily: every
// Acquire and SumActive sweeps first, there is no background timer.
type Repository interface {
	Acquire(ctx context.Context, eventID, userID uuid.UUID, quantity int, ttl time.Duration) (uuid.UUID, error)
	SumActive(ctx context.Context, eventID uuid.UUID) (int, error)
	Release(ctx context.Context, eventID, userID uuid.UUID) error
	SweepExpired(ctx context.Context) (int64, error)
	ListActive(ctx context.Context, eventID uuid.UUID) ([]SeatLock, error)
	DeleteByEvent(tx *gorm.DB, eventID uuid.UUID) error
}

type repository struct {
	db    *gorm.DB
	clock clock.Clock
	ttl   time.Duration
}

type Option func(*repository)

// WithClock overrides the time source used for expiry.
func WithClock(c clock.Clock) Option {
	return func(r *repository) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithDefaultTTL sets the TTL applied when Acquire is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(r *repository) {
		if d > 0 {
			r.ttl = d
		}
	}
}

func NewRepository(db *gorm.DB, opts ...Option) Repository {
	r := &repository{
		db:    db,
		clock: clock.Real(),
		ttl:   DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) Acquire(ctx context.Context, eventID, userID uuid.UUID, quantity int, ttl time.Duration) (uuid.UUID, error) {
	if quantity <= 0 {
		return uuid.Nil, ErrInvalidQuantity
	}
	if ttl <= 0 {
		ttl = r.ttl
	}

	if _, err := r.SweepExpired(ctx); err != nil {
		return uuid.Nil, err
	}

	lock := &SeatLock{
		EventID:   eventID,
		UserID:    userID,
		Quantity:  quantity,
		ExpiresAt: r.clock.Now().Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(lock).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to acquire seat lock: %w", err)
	}
	return lock.ID, nil
}

func (r *repository) SumActive(ctx context.Context, eventID uuid.UUID) (int, error) {
	if _, err := r.SweepExpired(ctx); err != nil {
		return 0, err
	}

	// The expiry predicate is repeated so a lock that lapses between the
	// sweep and the sum still does not count.
	var total int64
	err := r.db.WithContext(ctx).
		Model(&SeatLock{}).
		Where("event_id = ? AND expires_at > ?", eventID, r.clock.Now()).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum seat locks: %w", err)
	}
	return int(total), nil
}

func (r *repository) Release(ctx context.Context, eventID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&SeatLock{}).Error
	if err != nil {
		return fmt.Errorf("failed to release seat locks: %w", err)
	}
	return nil
}

func (r *repository) SweepExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.clock.Now()).
		Delete(&SeatLock{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired seat locks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repository) ListActive(ctx context.Context, eventID uuid.UUID) ([]SeatLock, error) {
	var locks []SeatLock
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND expires_at > ?", eventID, r.clock.Now()).
		Order("expires_at ASC").
		Find(&locks).Error
	return locks, err
}

// DeleteByEvent removes every lock of an event inside the caller's transaction.
func (r *repository) DeleteByEvent(tx *gorm.DB, eventID uuid.UUID) error {
	return tx.Where("event_id = ?", eventID).Delete(&SeatLock{}).Error
}
