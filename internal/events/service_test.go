package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventbook/internal/realtime"
	"eventbook/internal/seats"
	"eventbook/internal/shared/testutil"
	"eventbook/pkg/clock"
	"eventbook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu      sync.Mutex
	updates []realtime.SeatUpdate
}

func (p *recordingPublisher) Publish(_ context.Context, u realtime.SeatUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return nil
}

func (p *recordingPublisher) last() (realtime.SeatUpdate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return realtime.SeatUpdate{}, false
	}
	return p.updates[len(p.updates)-1], true
}

type stubLedger struct {
	confirmed int64
	cleared   []uuid.UUID
}

func (l *stubLedger) CountConfirmed(*gorm.DB, uuid.UUID) (int64, error) { return l.confirmed, nil }

func (l *stubLedger) DeleteByEvent(_ *gorm.DB, id uuid.UUID) error {
	l.cleared = append(l.cleared, id)
	return nil
}

type fixture struct {
	svc   Service
	repo  Repository
	locks seats.Repository
	pub   *recordingPublisher
	clk   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t, &Event{}, &seats.SeatLock{})
	clk := clock.Fake(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	repo := NewRepository(db)
	locks := seats.NewRepository(db, seats.WithClock(clk))
	pub := &recordingPublisher{}
	return &fixture{
		svc:   NewService(repo, locks, pub, logger.Discard()),
		repo:  repo,
		locks: locks,
		pub:   pub,
		clk:   clk,
	}
}

func (f *fixture) create(t *testing.T, total int) *EventResponse {
	t.Helper()
	resp, err := f.svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Opera Gala",
		Location:   "Delhi",
		Date:       showDay,
		TotalSeats: total,
		Price:      40,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return resp
}

func TestCreateEventStartsFullyAvailable(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t, 12)
	if resp.AvailableSeats != 12 || resp.TrulyAvailable != 12 {
		t.Fatalf("seats = %d/%d truly, want 12/12", resp.AvailableSeats, resp.TrulyAvailable)
	}
}

func TestGetEventSubtractsActiveLocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, 10)
	id := uuid.MustParse(created.ID)

	if _, err := f.locks.Acquire(ctx, id, uuid.New(), 4, time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	got, err := f.svc.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.AvailableSeats != 10 || got.TrulyAvailable != 6 {
		t.Fatalf("seats = %d available, %d truly; want 10, 6", got.AvailableSeats, got.TrulyAvailable)
	}

	f.clk.Advance(time.Minute)
	got, _ = f.svc.GetEvent(ctx, id)
	if got.TrulyAvailable != 10 {
		t.Fatalf("TrulyAvailable after lock expiry = %d, want 10", got.TrulyAvailable)
	}
}

func TestUpdateEventBroadcastsNewCounts(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, 10)
	id := uuid.MustParse(created.ID)
	total := 14

	if _, err := f.svc.UpdateEvent(context.Background(), id, UpdateEventRequest{TotalSeats: &total}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	update, ok := f.pub.last()
	if !ok {
		t.Fatal("no seat update published")
	}
	want := realtime.SeatUpdate{EventID: created.ID, AvailableSeats: 14, TrulyAvailable: 14, TotalSeats: 14}
	if update != want {
		t.Fatalf("update = %+v, want %+v", update, want)
	}
}

func TestPublishSeatUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, 8)
	id := uuid.MustParse(created.ID)
	_, _ = f.locks.Acquire(ctx, id, uuid.New(), 3, 0)

	if err := f.svc.PublishSeatUpdate(ctx, id); err != nil {
		t.Fatalf("PublishSeatUpdate: %v", err)
	}
	update, _ := f.pub.last()
	if update.TrulyAvailable != 5 || update.AvailableSeats != 8 || update.TotalSeats != 8 {
		t.Fatalf("update = %+v", update)
	}

	if err := f.svc.PublishSeatUpdate(ctx, uuid.New()); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("PublishSeatUpdate unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while bookings are confirmed", func(t *testing.T) {
		f := newFixture(t)
		f.svc.SetBookingLedger(&stubLedger{confirmed: 1})
		created := f.create(t, 5)

		if err := f.svc.DeleteEvent(ctx, uuid.MustParse(created.ID)); !errors.Is(err, ErrEventHasBookings) {
			t.Fatalf("DeleteEvent error = %v, want ErrEventHasBookings", err)
		}
	})

	t.Run("removes event and its locks", func(t *testing.T) {
		f := newFixture(t)
		ledger := &stubLedger{}
		f.svc.SetBookingLedger(ledger)
		created := f.create(t, 5)
		id := uuid.MustParse(created.ID)
		_, _ = f.locks.Acquire(ctx, id, uuid.New(), 2, 0)

		if err := f.svc.DeleteEvent(ctx, id); err != nil {
			t.Fatalf("DeleteEvent: %v", err)
		}
		if _, err := f.repo.GetByID(ctx, id); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("GetByID after delete error = %v, want ErrEventNotFound", err)
		}
		if n, _ := f.locks.SumActive(ctx, id); n != 0 {
			t.Fatalf("locks after delete = %d, want 0", n)
		}
		if len(ledger.cleared) != 1 || ledger.cleared[0] != id {
			t.Fatalf("ledger cleared = %v, want [%s]", ledger.cleared, id)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		if err := f.svc.DeleteEvent(ctx, uuid.New()); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("DeleteEvent error = %v, want ErrEventNotFound", err)
		}
	})
}
