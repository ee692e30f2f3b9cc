package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/pkg/clock"
	"eventbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 5,
		PublicRequests:  5,
		AuthRequests:    3,
		BookingRequests: 2,
		AdminRequests:   5,
		HealthRequests:  5,
	}
}

func newLimiter(t *testing.T, cfg config.RateLimitConfig) (*RateLimiter, *clock.FakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clk := clock.Fake(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	return NewRateLimiter(client, cfg).WithClock(clk), clk, mr
}

func TestSlidingWindow(t *testing.T) {
	rl, clk, _ := newLimiter(t, testConfig())
	ctx := context.Background()

	// All three land in the same instant and must still count separately.
	for i := 1; i <= 3; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth)
		if err != nil {
			t.Fatalf("IsAllowed #%d: %v", i, err)
		}
		if !res.Allowed || res.Remaining != 3-i {
			t.Fatalf("request #%d = %+v, want allowed with %d remaining", i, res, 3-i)
		}
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth)
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if res.Allowed || res.Remaining != 0 {
		t.Fatalf("fourth request = %+v, want rejected", res)
	}

	if res, _ := rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeAuth); !res.Allowed {
		t.Fatal("other client was limited")
	}
	if res, _ := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypePublic); !res.Allowed {
		t.Fatal("other route type was limited")
	}

	clk.Advance(time.Minute + time.Second)
	if res, _ := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth); !res.Allowed {
		t.Fatal("request after the window slid was rejected")
	}
}

func TestBypass(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.RateLimitConfig)
	}{
		{"disabled", func(c *config.RateLimitConfig) { c.Enabled = false }},
		{"whitelisted", func(c *config.RateLimitConfig) { c.WhitelistedIPs = []string{"10.0.0.9"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			rl, _, mr := newLimiter(t, cfg)

			for i := 0; i < 5; i++ {
				res, err := rl.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeBooking)
				if err != nil || !res.Allowed {
					t.Fatalf("request #%d = %+v, %v; want allowed", i+1, res, err)
				}
			}
			if keys := mr.Keys(); len(keys) != 0 {
				t.Fatalf("bypassed requests wrote keys %v", keys)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _, mr := newLimiter(t, testConfig())

	r := gin.New()
	r.Use(Middleware(rl, logger.Discard()))
	r.POST("/api/v1/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send(); w.Code != http.StatusCreated {
			t.Fatalf("request #%d status = %d, want 201", i+1, w.Code)
		}
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("X-RateLimit-Limit = %q, want 2", got)
	}

	// Redis down: requests pass rather than fail.
	mr.Close()
	if w := send(); w.Code != http.StatusCreated {
		t.Fatalf("status with Redis down = %d, want 201", w.Code)
	}
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/status", RateLimitTypeHealth},
		{"/api/v1/admin/events/:id", RateLimitTypeAdmin},
		{"/api/v1/auth/login", RateLimitTypeAuth},
		{"/api/v1/bookings/:id/cancel", RateLimitTypeBooking},
		{"/api/v1/events", RateLimitTypePublic},
		{"/api/v1/realtime/stream", RateLimitTypePublic},
		{"", RateLimitTypeDefault},
	}
	for _, tt := range tests {
		if got := getRateLimitType(tt.path); got != tt.want {
			t.Errorf("getRateLimitType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
