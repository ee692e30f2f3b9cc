package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventbook/internal/shared/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var showDay = time.Date(2026, 11, 20, 19, 30, 0, 0, time.UTC)

func newRepo(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &Event{})
	return NewRepository(db), db
}

func seedEvent(t *testing.T, repo Repository, mutate func(*Event)) *Event {
	t.Helper()
	e := &Event{
		Title:          "Jazz Night",
		Description:    "Live quartet",
		Location:       "Mumbai",
		Date:           showDay,
		TotalSeats:     10,
		AvailableSeats: 10,
		Price:          25,
		CreatedBy:      uuid.New(),
	}
	if mutate != nil {
		mutate(e)
	}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := newRepo(t)
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("GetByID error = %v, want ErrEventNotFound", err)
	}
}

func TestCommitDecrementGuard(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, repo, func(e *Event) { e.AvailableSeats = 3 })

	tests := []struct {
		name     string
		id       uuid.UUID
		quantity int
		want     int64
	}{
		{"more than available", e.ID, 4, 0},
		{"exactly available", e.ID, 3, 1},
		{"nothing left", e.ID, 1, 0},
		{"unknown event", uuid.New(), 1, 0},
	}
	for _, tt := range tests {
		got, err := repo.CommitDecrement(ctx, tt.id, tt.quantity)
		if err != nil {
			t.Fatalf("%s: CommitDecrement: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: affected = %d, want %d", tt.name, got, tt.want)
		}
	}

	stored, _ := repo.GetByID(ctx, e.ID)
	if stored.AvailableSeats != 0 {
		t.Fatalf("AvailableSeats = %d, want 0", stored.AvailableSeats)
	}
}

func TestCommitDecrementNeverOversellsUnderConcurrency(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, repo, func(e *Event) { e.TotalSeats, e.AvailableSeats = 5, 5 })

	const buyers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.CommitDecrement(ctx, e.ID, 1)
			if err != nil {
				t.Errorf("CommitDecrement: %v", err)
				return
			}
			mu.Lock()
			accepted += int(n)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if accepted != 5 {
		t.Fatalf("accepted commits = %d, want 5", accepted)
	}
	stored, _ := repo.GetByID(ctx, e.ID)
	if stored.AvailableSeats != 0 {
		t.Fatalf("AvailableSeats = %d, want 0", stored.AvailableSeats)
	}
}

func TestRestoreSeatsGuard(t *testing.T) {
	repo, db := newRepo(t)
	e := seedEvent(t, repo, func(e *Event) { e.AvailableSeats = 8 })

	if err := repo.RestoreSeats(db, e.ID, 3); !errors.Is(err, ErrSeatOverflow) {
		t.Fatalf("RestoreSeats past capacity error = %v, want ErrSeatOverflow", err)
	}
	if err := repo.RestoreSeats(db, e.ID, 2); err != nil {
		t.Fatalf("RestoreSeats(2): %v", err)
	}
	got, _ := repo.GetByID(context.Background(), e.ID)
	if got.AvailableSeats != 10 {
		t.Fatalf("AvailableSeats = %d, want 10", got.AvailableSeats)
	}
}

func TestUpdateResizesCapacity(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	intp := func(n int) *int { return &n }

	tests := []struct {
		name      string
		total     *int
		wantErr   error
		wantTotal int
		wantAvail int
	}{
		{"grow", intp(15), nil, 15, 11},
		{"shrink within unsold", intp(7), nil, 7, 3},
		{"shrink to exactly sold", intp(4), nil, 4, 0},
		{"shrink below sold", intp(3), ErrCapacityBelowSold, 10, 6},
		{"metadata only", nil, nil, 10, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 4 seats sold.
			e := seedEvent(t, repo, func(e *Event) { e.AvailableSeats = 6 })

			got, err := repo.Update(ctx, e.ID, map[string]interface{}{"title": "Renamed"}, tt.total)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Title != "Renamed" {
				t.Fatalf("Title = %q, want Renamed", got.Title)
			}

			stored, _ := repo.GetByID(ctx, e.ID)
			if stored.TotalSeats != tt.wantTotal || stored.AvailableSeats != tt.wantAvail {
				t.Fatalf("seats = %d/%d, want %d/%d", stored.AvailableSeats, stored.TotalSeats, tt.wantAvail, tt.wantTotal)
			}
		})
	}

	if _, err := repo.Update(ctx, uuid.New(), nil, intp(5)); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("Update unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	seedEvent(t, repo, func(e *Event) { e.Title, e.Location, e.Date = "Rock Fest", "Pune", showDay.Add(48*time.Hour) })
	seedEvent(t, repo, func(e *Event) { e.Title, e.Location, e.Date = "Jazz Night", "Mumbai", showDay })
	seedEvent(t, repo, func(e *Event) {
		e.Title, e.Location, e.Date, e.Description = "Comedy Hour", "Navi Mumbai", showDay.Add(24*time.Hour), "jazz-free standup"
	})

	tests := []struct {
		name  string
		query EventListQuery
		want  []string
	}{
		{"all ordered by date", EventListQuery{}, []string{"Jazz Night", "Comedy Hour", "Rock Fest"}},
		{"location substring", EventListQuery{Location: "mumbai"}, []string{"Jazz Night", "Comedy Hour"}},
		{"calendar date", EventListQuery{Date: "2026-11-21"}, []string{"Comedy Hour"}},
		{"search title or description", EventListQuery{Search: "JAZZ"}, []string{"Jazz Night", "Comedy Hour"}},
		{"combined", EventListQuery{Location: "pune", Search: "jazz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.List(ctx, tt.query)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var got []string
			for _, e := range events {
				got = append(got, e.Title)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("List = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestListByCreatorNewestFirst(t *testing.T) {
	repo, _ := newRepo(t)
	admin := uuid.New()
	first := seedEvent(t, repo, func(e *Event) { e.CreatedBy = admin; e.CreatedAt = showDay.Add(-time.Hour) })
	second := seedEvent(t, repo, func(e *Event) { e.CreatedBy = admin; e.CreatedAt = showDay })
	seedEvent(t, repo, nil)

	events, err := repo.ListByCreator(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(events) != 2 || events[0].ID != second.ID || events[1].ID != first.ID {
		t.Fatalf("ListByCreator order wrong: %+v", events)
	}
}
