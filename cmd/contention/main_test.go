package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"eventbook/api/routes"
	"eventbook/internal/events"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/shared/testutil"
	"eventbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestRunAgainstServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gdb := testutil.NewDB(t)
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	event := &events.Event{
		Title: "Tiny Gig", Location: "Basement", Date: time.Now().Add(24 * time.Hour),
		TotalSeats: 7, AvailableSeats: 7, Price: 5, CreatedBy: uuid.New(),
	}
	if err := gdb.Create(event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}

	cfg := config.Load()
	engine := gin.New()
	routes.NewRouter(cfg, &database.DB{PostgreSQL: gdb, Redis: rdb}, routes.Dependencies{Logger: logger.Discard()}).SetupRoutes(engine)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	opts := options{
		BaseURL:  srv.URL + cfg.GetAPIBasePath(),
		EventID:  event.ID.String(),
		Users:    6,
		Quantity: 2,
		Password: "contention-pass",
	}
	rep, err := run(context.Background(), srv.Client(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if rep.Failed != 0 {
		t.Fatalf("failed attempts: %+v", rep.Attempts)
	}
	if rep.Confirmed+rep.Rejected != opts.Users {
		t.Fatalf("confirmed %d + rejected %d != %d", rep.Confirmed, rep.Rejected, opts.Users)
	}
	// 7 seats fit at most three bookings of two.
	if rep.Confirmed > 3 || rep.Confirmed == 0 {
		t.Fatalf("confirmed = %d, want 1..3", rep.Confirmed)
	}
	if !rep.Consistent(opts.Quantity) {
		t.Fatalf("inconsistent counters: %+v", rep)
	}
	if rep.TrulyAvailable != rep.SeatsAfter {
		t.Fatalf("truly available %d != available %d with no bookings in flight", rep.TrulyAvailable, rep.SeatsAfter)
	}
}
