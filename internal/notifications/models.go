package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed NotificationType = "booking.confirmed"
	NotificationTypeBookingCancelled NotificationType = "booking.cancelled"
)

// BookingNotification is the message carried on the notification topic.
type BookingNotification struct {
	ID             uuid.UUID        `json:"id"`
	Type           NotificationType `json:"type"`
	BookingID      string           `json:"booking_id"`
	EventID        string           `json:"event_id"`
	EventTitle     string           `json:"event_title"`
	UserID         string           `json:"user_id"`
	RecipientName  string           `json:"recipient_name"`
	RecipientEmail string           `json:"recipient_email"`
	Quantity       int              `json:"quantity"`
	TotalAmount    float64          `json:"total_amount"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func NewBookingNotification(t NotificationType, occurredAt time.Time) *BookingNotification {
	return &BookingNotification{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: occurredAt.UTC(),
	}
}

// PartitionKey keeps every message of one booking on one partition, so a
// cancellation is never consumed before its confirmation.
func (n *BookingNotification) PartitionKey() string {
	return n.BookingID
}

func (n *BookingNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*BookingNotification, error) {
	var n BookingNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.Type != NotificationTypeBookingConfirmed && n.Type != NotificationTypeBookingCancelled {
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
	return &n, nil
}

func (n *BookingNotification) Subject() string {
	switch n.Type {
	case NotificationTypeBookingCancelled:
		return "Booking cancelled: " + n.EventTitle
	default:
		return "Booking confirmed: " + n.EventTitle
	}
}

func (n *BookingNotification) TextBody() string {
	verb := "is confirmed"
	if n.Type == NotificationTypeBookingCancelled {
		verb = "has been cancelled"
	}
	return fmt.Sprintf("Hi %s,\r\n\r\nYour booking %s for %s %s.\r\nTickets: %d\r\nTotal: %.2f\r\n",
		n.RecipientName, n.BookingID, n.EventTitle, verb, n.Quantity, n.TotalAmount)
}
