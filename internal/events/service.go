package events

import (
	"context"
	"fmt"
	"log/slog"

	"eventbook/internal/realtime"
	"eventbook/internal/seats"
	"eventbook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// Service dependency injection
	SetBookingLedger(ledger BookingLedger)

	CreateEvent(ctx context.Context, creatorID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	ListEvents(ctx context.Context, query EventListQuery) ([]EventResponse, error)
	ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// PublishSeatUpdate reads the settled counters of an event and pushes
	// them to its subscribers.
	PublishSeatUpdate(ctx context.Context, id uuid.UUID) error
}

// BookingLedger lets the catalog check and clear an event's bookings without
// importing the bookings package.
type BookingLedger interface {
	CountConfirmed(tx *gorm.DB, eventID uuid.UUID) (int64, error)
	DeleteByEvent(tx *gorm.DB, eventID uuid.UUID) error
}

type service struct {
	repo      Repository
	locks     seats.Repository
	calc      *seats.Calculator
	publisher realtime.Publisher
	ledger    BookingLedger
	log       *logger.Logger
}

func NewService(repo Repository, locks seats.Repository, publisher realtime.Publisher, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:      repo,
		locks:     locks,
		calc:      seats.NewCalculator(locks),
		publisher: publisher,
		log:       log,
	}
}

func (s *service) SetBookingLedger(ledger BookingLedger) {
	s.ledger = ledger
}

func (s *service) CreateEvent(ctx context.Context, creatorID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	event := &Event{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		Date:           req.Date.UTC(),
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		CreatedBy:      creatorID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.LogEventCreated(ctx, event.ID.String(), creatorID.String())

	resp := event.ToResponse(event.AvailableSeats)
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAvailability(ctx, event)
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery) ([]EventResponse, error) {
	events, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.withAvailabilityAll(ctx, events)
}

func (s *service) ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]EventResponse, error) {
	events, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return s.withAvailabilityAll(ctx, events)
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.Update(ctx, id, req.fields(), req.TotalSeats)
	if err != nil {
		return nil, err
	}

	resp, err := s.withAvailability(ctx, event)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, event, resp.TrulyAvailable)
	return resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if s.ledger != nil {
			confirmed, err := s.ledger.CountConfirmed(tx, id)
			if err != nil {
				return fmt.Errorf("failed to count bookings: %w", err)
			}
			if confirmed > 0 {
				return ErrEventHasBookings
			}
			if err := s.ledger.DeleteByEvent(tx, id); err != nil {
				return fmt.Errorf("failed to delete cancelled bookings: %w", err)
			}
		}
		if err := s.locks.DeleteByEvent(tx, id); err != nil {
			return fmt.Errorf("failed to delete seat locks: %w", err)
		}
		return s.repo.DeleteTx(tx, id)
	})
}

func (s *service) PublishSeatUpdate(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	truly, err := s.calc.TrulyAvailable(ctx, event.ID, event.AvailableSeats)
	if err != nil {
		return err
	}
	s.publish(ctx, event, truly)
	return nil
}

func (s *service) publish(ctx context.Context, event *Event, truly int) {
	if s.publisher == nil {
		return
	}
	update := realtime.SeatUpdate{
		EventID:        event.ID.String(),
		AvailableSeats: event.AvailableSeats,
		TrulyAvailable: truly,
		TotalSeats:     event.TotalSeats,
	}
	if err := s.publisher.Publish(ctx, update); err != nil {
		s.log.WarnContext(ctx, "failed to publish seat update",
			slog.String("event_id", update.EventID),
			slog.Any("error", err),
		)
	}
}

func (s *service) withAvailability(ctx context.Context, event *Event) (*EventResponse, error) {
	truly, err := s.calc.TrulyAvailable(ctx, event.ID, event.AvailableSeats)
	if err != nil {
		return nil, fmt.Errorf("failed to compute availability: %w", err)
	}
	resp := event.ToResponse(truly)
	return &resp, nil
}

func (s *service) withAvailabilityAll(ctx context.Context, events []Event) ([]EventResponse, error) {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		resp, err := s.withAvailability(ctx, &events[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}
