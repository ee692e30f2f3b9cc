package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventbook/internal/events"
	"eventbook/internal/notifications"
	"eventbook/internal/seats"
	"eventbook/pkg/clock"
	"eventbook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, requester Requester, req CreateBookingRequest) (*BookingResult, error)
	GetBooking(ctx context.Context, requester Requester, id uuid.UUID) (*BookingDetail, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingDetail, error)
	ListAllBookings(ctx context.Context) ([]BookingDetail, error)
	CancelBooking(ctx context.Context, requester Requester, id uuid.UUID) (*Booking, error)
}

// SeatNotifier pushes the settled seat counters of an event to its
// subscribers.
type SeatNotifier interface {
	PublishSeatUpdate(ctx context.Context, eventID uuid.UUID) error
}

type service struct {
	repo     Repository
	events   events.Repository
	locks    seats.Repository
	calc     *seats.Calculator
	seats    SeatNotifier
	notifier notifications.Publisher
	clock    clock.Clock
	lockTTL  time.Duration
	log      *logger.Logger
}

type Option func(*service)

func WithClock(c clock.Clock) Option {
	return func(s *service) {
		s.clock = c
	}
}

// WithLockTTL sets the lifetime of the provisional hold taken per attempt.
func WithLockTTL(d time.Duration) Option {
	return func(s *service) {
		s.lockTTL = d
	}
}

func WithNotifier(p notifications.Publisher) Option {
	return func(s *service) {
		s.notifier = p
	}
}

func NewService(repo Repository, eventRepo events.Repository, locks seats.Repository, seatNotifier SeatNotifier, log *logger.Logger, opts ...Option) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	s := &service{
		repo:     repo,
		events:   eventRepo,
		locks:    locks,
		calc:     seats.NewCalculator(locks),
		seats:    seatNotifier,
		notifier: notifications.NoopPublisher{},
		clock:    clock.Real(),
		lockTTL:  seats.DefaultLockTTL,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking runs one purchase attempt: availability check, provisional
// lock, guarded commit, booking record. The lock is released on every path
// that acquired it.
func (s *service) CreateBooking(ctx context.Context, requester Requester, req CreateBookingRequest) (*BookingResult, error) {
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	totalAmount := event.Price * float64(req.Quantity)

	truly, err := s.calc.TrulyAvailable(ctx, event.ID, event.AvailableSeats)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if truly < req.Quantity {
		s.log.LogBookingRejected(ctx, event.ID.String(), requester.UserID.String(), req.Quantity, "availability")
		return nil, ErrInsufficientSeats
	}

	if _, err := s.locks.Acquire(ctx, event.ID, requester.UserID, req.Quantity, s.lockTTL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	booking, committed, err := s.commit(ctx, requester, event, req, totalAmount)

	// The caller may have gone away; the lock still has to go.
	bg := context.WithoutCancel(ctx)
	s.releaseLock(bg, event.ID, requester.UserID)

	if committed {
		s.publishSeats(bg, event.ID)
	}
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), event.ID.String(), requester.UserID.String(), booking.Quantity)
	s.notify(bg, notifications.NotificationTypeBookingConfirmed, booking, event.Title)

	return &BookingResult{
		Message:     "Booking created successfully",
		BookingID:   booking.ID,
		TotalAmount: booking.TotalAmount,
	}, nil
}

// commit decrements the committed counter and records the booking. The
// decrement stands even if the record cannot be written.
func (s *service) commit(ctx context.Context, requester Requester, event *events.Event, req CreateBookingRequest, totalAmount float64) (*Booking, bool, error) {
	rows, err := s.events.CommitDecrement(ctx, event.ID, req.Quantity)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if rows == 0 {
		s.log.LogBookingRejected(ctx, event.ID.String(), requester.UserID.String(), req.Quantity, "commit")
		return nil, false, ErrInsufficientSeats
	}

	booking := &Booking{
		EventID:     event.ID,
		UserID:      requester.UserID,
		Name:        req.Name,
		Email:       req.Email,
		Mobile:      req.Mobile,
		Quantity:    req.Quantity,
		TotalAmount: totalAmount,
		Status:      StatusConfirmed,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.log.ErrorWithContext(ctx, "seats committed without a booking record", err, map[string]interface{}{
			"event_id": event.ID.String(),
			"user_id":  requester.UserID.String(),
			"quantity": req.Quantity,
		})
		return nil, true, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return booking, true, nil
}

func (s *service) GetBooking(ctx context.Context, requester Requester, id uuid.UUID) (*BookingDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(&detail.Booking) {
		return nil, ErrAccessDenied
	}
	return detail, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingDetail, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAllBookings(ctx context.Context) ([]BookingDetail, error) {
	return s.repo.ListAll(ctx)
}

// CancelBooking flips the booking to cancelled and returns its seats in one
// transaction. Only the first cancellation of a booking restores seats.
func (s *service) CancelBooking(ctx context.Context, requester Requester, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(booking) {
		return nil, ErrAccessDenied
	}
	if booking.Status == StatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	now := s.clock.Now()
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		flipped, err := s.repo.MarkCancelled(tx, booking.ID, now)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrBookingAlreadyCancelled
		}
		return s.events.RestoreSeats(tx, booking.EventID, booking.Quantity)
	})
	if err != nil {
		if errors.Is(err, ErrBookingAlreadyCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	booking.Status = StatusCancelled
	booking.CancelledAt = &now

	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.EventID.String(), requester.UserID.String())

	bg := context.WithoutCancel(ctx)
	s.publishSeats(bg, booking.EventID)

	title := ""
	if event, err := s.events.GetByID(bg, booking.EventID); err == nil {
		title = event.Title
	}
	s.notify(bg, notifications.NotificationTypeBookingCancelled, booking, title)

	return booking, nil
}

func (s *service) releaseLock(ctx context.Context, eventID, userID uuid.UUID) {
	if err := s.locks.Release(ctx, eventID, userID); err != nil {
		s.log.WarnContext(ctx, "failed to release seat lock",
			slog.String("event_id", eventID.String()),
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *service) publishSeats(ctx context.Context, eventID uuid.UUID) {
	if s.seats == nil {
		return
	}
	if err := s.seats.PublishSeatUpdate(ctx, eventID); err != nil {
		s.log.WarnContext(ctx, "failed to broadcast seat update",
			slog.String("event_id", eventID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *service) notify(ctx context.Context, t notifications.NotificationType, booking *Booking, eventTitle string) {
	n := notifications.NewBookingNotification(t, s.clock.Now())
	n.BookingID = booking.ID.String()
	n.EventID = booking.EventID.String()
	n.EventTitle = eventTitle
	n.UserID = booking.UserID.String()
	n.RecipientName = booking.Name
	n.RecipientEmail = booking.Email
	n.Quantity = booking.Quantity
	n.TotalAmount = booking.TotalAmount

	if err := s.notifier.Publish(ctx, n); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking notification",
			slog.String("booking_id", n.BookingID),
			slog.String("type", string(t)),
			slog.Any("error", err),
		)
	}
}
