package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubService struct {
	err    error
	result *BookingResult
	got    Requester
}

func (s *stubService) CreateBooking(_ context.Context, r Requester, _ CreateBookingRequest) (*BookingResult, error) {
	s.got = r
	return s.result, s.err
}

func (s *stubService) GetBooking(_ context.Context, r Requester, _ uuid.UUID) (*BookingDetail, error) {
	s.got = r
	if s.err != nil {
		return nil, s.err
	}
	return &BookingDetail{Title: "Jazz Night"}, nil
}

func (s *stubService) ListUserBookings(context.Context, uuid.UUID) ([]BookingDetail, error) {
	return []BookingDetail{}, s.err
}

func (s *stubService) ListAllBookings(context.Context) ([]BookingDetail, error) {
	return []BookingDetail{}, s.err
}

func (s *stubService) CancelBooking(_ context.Context, r Requester, _ uuid.UUID) (*Booking, error) {
	s.got = r
	if s.err != nil {
		return nil, s.err
	}
	return &Booking{Status: StatusCancelled}, nil
}

// fakeAuth stands in for JWTAuth and authenticates every request as role.
func fakeAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func newRouter(svc Service, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupBookingRoutes(r.Group("/api/v1"), NewController(svc), fakeAuth(userID, role))
	return r
}

func validBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"event_id": uuid.New(),
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"mobile":   "5551234567",
		"quantity": 2,
	})
	return body
}

func TestCreateBookingResponseIsFlat(t *testing.T) {
	id := uuid.New()
	svc := &stubService{result: &BookingResult{Message: "Booking created successfully", BookingID: id, TotalAmount: 50}}
	user := uuid.New()
	r := newRouter(svc, user, "user")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(validBody())))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["bookingId"] != id.String() || body["total_amount"] != float64(50) || body["message"] != "Booking created successfully" {
		t.Fatalf("body = %v", body)
	}
	if svc.got.UserID != user {
		t.Fatalf("requester = %v, want %v", svc.got.UserID, user)
	}
}

func TestCreateBookingAcceptsLargeQuantity(t *testing.T) {
	svc := &stubService{result: &BookingResult{Message: "Booking created successfully", BookingID: uuid.New()}}
	r := newRouter(svc, uuid.New(), "user")
	body := fmt.Sprintf(`{"event_id":%q,"name":"Ada","email":"ada@example.com","mobile":"5551234567","quantity":250}`, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	r := newRouter(&stubService{}, uuid.New(), "user")
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"zero quantity", fmt.Sprintf(`{"event_id":%q,"name":"Ada","email":"ada@example.com","mobile":"5551234567","quantity":0}`, uuid.New())},
		{"bad email", fmt.Sprintf(`{"event_id":%q,"name":"Ada","email":"nope","mobile":"5551234567","quantity":1}`, uuid.New())},
		{"missing event", `{"name":"Ada","email":"ada@example.com","mobile":"5551234567","quantity":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(tt.body)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{ErrEventNotFound, http.StatusNotFound, "Event not found"},
		{ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
		{ErrInsufficientSeats, http.StatusBadRequest, "Not enough seats available"},
		{ErrAccessDenied, http.StatusForbidden, "Access denied"},
		{ErrBookingAlreadyCancelled, http.StatusConflict, "Booking is already cancelled"},
		{fmt.Errorf("%w: %w", ErrInternal, errors.New("boom")), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r := newRouter(&stubService{err: tt.err}, uuid.New(), "user")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/bookings/"+uuid.NewString()+"/cancel", nil))

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.message {
				t.Fatalf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestAdminListingRequiresAdmin(t *testing.T) {
	for _, tt := range []struct {
		role string
		code int
	}{
		{"user", http.StatusForbidden},
		{"admin", http.StatusOK},
	} {
		r := newRouter(&stubService{}, uuid.New(), tt.role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/admin/all", nil))
		if w.Code != tt.code {
			t.Fatalf("role %s: status = %d, want %d", tt.role, w.Code, tt.code)
		}
	}
}

func TestGetBookingPassesRole(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, uuid.New(), "admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !svc.got.Role.IsAdmin() {
		t.Fatalf("requester role = %q, want admin", svc.got.Role)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}
}
