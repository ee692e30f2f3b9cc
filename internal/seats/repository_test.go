package seats

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventbook/internal/shared/testutil"
	"eventbook/pkg/clock"

	"github.com/google/uuid"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (Repository, *clock.FakeClock) {
	t.Helper()
	db := testutil.NewDB(t, &SeatLock{})
	clk := clock.Fake(epoch)
	return NewRepository(db, WithClock(clk)), clk
}

func TestAcquireAndSumActive(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	event, other := uuid.New(), uuid.New()

	if got, err := store.SumActive(ctx, event); err != nil || got != 0 {
		t.Fatalf("SumActive on empty store = %d, %v; want 0, nil", got, err)
	}

	for _, q := range []int{2, 3} {
		if _, err := store.Acquire(ctx, event, uuid.New(), q, 0); err != nil {
			t.Fatalf("Acquire(%d): %v", q, err)
		}
	}
	if _, err := store.Acquire(ctx, other, uuid.New(), 7, 0); err != nil {
		t.Fatalf("Acquire other event: %v", err)
	}

	got, err := store.SumActive(ctx, event)
	if err != nil {
		t.Fatalf("SumActive: %v", err)
	}
	if got != 5 {
		t.Fatalf("SumActive = %d, want 5", got)
	}
}

func TestAcquireRejectsNonPositiveQuantity(t *testing.T) {
	store, _ := newStore(t)
	for _, q := range []int{0, -1} {
		if _, err := store.Acquire(context.Background(), uuid.New(), uuid.New(), q, 0); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Acquire(quantity=%d) error = %v, want ErrInvalidQuantity", q, err)
		}
	}
}

func TestAcquireDoesNotCheckCapacity(t *testing.T) {
	store, _ := newStore(t)
	event := uuid.New()
	if _, err := store.Acquire(context.Background(), event, uuid.New(), 100000, 0); err != nil {
		t.Fatalf("Acquire of a huge quantity failed: %v", err)
	}
}

func TestExpiredLocksDoNotCountWithoutExplicitSweep(t *testing.T) {
	store, clk := newStore(t)
	ctx := context.Background()
	event := uuid.New()

	if _, err := store.Acquire(ctx, event, uuid.New(), 4, time.Minute); err != nil {
		t.Fatalf("Acquire short: %v", err)
	}
	if _, err := store.Acquire(ctx, event, uuid.New(), 1, 0); err != nil {
		t.Fatalf("Acquire default ttl: %v", err)
	}

	clk.Advance(time.Minute)

	got, err := store.SumActive(ctx, event)
	if err != nil {
		t.Fatalf("SumActive: %v", err)
	}
	if got != 1 {
		t.Fatalf("SumActive after first lock expired = %d, want 1", got)
	}

	clk.Advance(DefaultLockTTL)
	if got, _ := store.SumActive(ctx, event); got != 0 {
		t.Fatalf("SumActive after all locks expired = %d, want 0", got)
	}
}

func TestAcquireSweepsExpiredLocks(t *testing.T) {
	store, clk := newStore(t)
	ctx := context.Background()
	event := uuid.New()

	if _, err := store.Acquire(ctx, event, uuid.New(), 2, time.Second); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	clk.Advance(2 * time.Second)

	if _, err := store.Acquire(ctx, uuid.New(), uuid.New(), 1, 0); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// The sweep inside Acquire already removed the stale row.
	if n, err := store.SweepExpired(ctx); err != nil || n != 0 {
		t.Fatalf("SweepExpired after Acquire = %d, %v; want 0, nil", n, err)
	}
}

func TestReleaseRemovesOnlyHoldersLocks(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	event, alice, bob := uuid.New(), uuid.New(), uuid.New()

	for _, holder := range []uuid.UUID{alice, alice, bob} {
		if _, err := store.Acquire(ctx, event, holder, 2, 0); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	}

	if err := store.Release(ctx, event, alice); err != nil {
		t.Fatalf("Release: %v", err)
	}

	locks, err := store.ListActive(ctx, event)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(locks) != 1 || locks[0].UserID != bob {
		t.Fatalf("remaining locks = %+v, want only bob's", locks)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	event, user := uuid.New(), uuid.New()

	for i := 0; i < 2; i++ {
		if err := store.Release(ctx, event, user); err != nil {
			t.Fatalf("Release #%d with no locks: %v", i+1, err)
		}
	}
}

func TestTrulyAvailable(t *testing.T) {
	store, clk := newStore(t)
	calc := NewCalculator(store)
	ctx := context.Background()
	event := uuid.New()

	if _, err := store.Acquire(ctx, event, uuid.New(), 3, time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	tests := []struct {
		name      string
		advance   time.Duration
		available int
		want      int
	}{
		{"lock counted", 0, 10, 7},
		{"locks may exceed committed seats", 0, 2, -1},
		{"lock lapsed", time.Minute, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk.Advance(tt.advance)
			got, err := calc.TrulyAvailable(ctx, event, tt.available)
			if err != nil {
				t.Fatalf("TrulyAvailable: %v", err)
			}
			if got != tt.want {
				t.Fatalf("TrulyAvailable(%d) = %d, want %d", tt.available, got, tt.want)
			}
		})
	}
}
