package analytics

import "github.com/google/uuid"

// Overview summarises sales across the whole catalog.
type Overview struct {
	TotalEvents       int64              `json:"total_events"`
	UpcomingEvents    int64              `json:"upcoming_events"`
	TotalUsers        int64              `json:"total_users"`
	ConfirmedBookings int64              `json:"confirmed_bookings"`
	CancelledBookings int64              `json:"cancelled_bookings"`
	SeatsSold         int64              `json:"seats_sold"`
	TotalRevenue      float64            `json:"total_revenue"`
	CancellationRate  float64            `json:"cancellation_rate"`
	TopEvents         []EventPerformance `json:"top_events"`
}

type EventPerformance struct {
	EventID     uuid.UUID `json:"event_id"`
	Title       string    `json:"title"`
	TotalSeats  int       `json:"total_seats"`
	SeatsSold   int64     `json:"seats_sold"`
	Revenue     float64   `json:"revenue"`
	Utilization float64   `json:"utilization"`
}

type EventAnalytics struct {
	EventID           uuid.UUID `json:"event_id"`
	Title             string    `json:"title"`
	TotalSeats        int       `json:"total_seats"`
	AvailableSeats    int       `json:"available_seats"`
	ConfirmedBookings int64     `json:"confirmed_bookings"`
	CancelledBookings int64     `json:"cancelled_bookings"`
	SeatsSold         int64     `json:"seats_sold"`
	Revenue           float64   `json:"revenue"`
	Utilization       float64   `json:"utilization"`
	CancellationRate  float64   `json:"cancellation_rate"`
}

// statusTotals is one row of bookings grouped by status.
type statusTotals struct {
	Status   string
	Bookings int64
	Seats    int64
	Revenue  float64
}

// percent returns part/whole as a percentage rounded to two decimals.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(int64(part/whole*10000+0.5)) / 100
}
