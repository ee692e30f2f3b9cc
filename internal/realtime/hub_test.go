package realtime

import (
	"context"
	"errors"
	"testing"

	"eventbook/pkg/logger"

	"github.com/google/uuid"
)

func TestBroadcastReachesOnlyChannelMembers(t *testing.T) {
	hub := NewHub(4, logger.Discard())
	a, b, c := hub.Connect(), hub.Connect(), hub.Connect()

	if err := hub.Join(a.ID, "e1"); err != nil {
		t.Fatalf("Join a: %v", err)
	}
	if err := hub.Join(b.ID, "e1"); err != nil {
		t.Fatalf("Join b: %v", err)
	}
	if err := hub.Join(c.ID, "e2"); err != nil {
		t.Fatalf("Join c: %v", err)
	}

	update := SeatUpdate{EventID: "e1", AvailableSeats: 8, TrulyAvailable: 6, TotalSeats: 10}
	if got := hub.Broadcast(update); got != 2 {
		t.Fatalf("Broadcast delivered = %d, want 2", got)
	}

	for _, cl := range []*Client{a, b} {
		select {
		case msg := <-cl.Messages():
			if msg.Event != MessageSeatUpdate || msg.Data != update {
				t.Fatalf("message = %+v, want seat-update %+v", msg, update)
			}
		default:
			t.Fatalf("client %s got nothing", cl.ID)
		}
	}
	select {
	case msg := <-c.Messages():
		t.Fatalf("non-member received %+v", msg)
	default:
	}
}

func TestJoinIsIdempotentAndLeaveStopsDelivery(t *testing.T) {
	hub := NewHub(4, logger.Discard())
	cl := hub.Connect()

	for i := 0; i < 2; i++ {
		if err := hub.Join(cl.ID, "e1"); err != nil {
			t.Fatalf("Join #%d: %v", i+1, err)
		}
	}
	if got := hub.Members("e1"); got != 1 {
		t.Fatalf("Members after double join = %d, want 1", got)
	}

	if err := hub.Leave(cl.ID, "e1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := hub.Leave(cl.ID, "e1"); err != nil {
		t.Fatalf("second Leave: %v", err)
	}
	if got := hub.Broadcast(SeatUpdate{EventID: "e1"}); got != 0 {
		t.Fatalf("Broadcast after leave delivered = %d, want 0", got)
	}
}

func TestUnknownClient(t *testing.T) {
	hub := NewHub(4, logger.Discard())
	if err := hub.Join(uuid.New(), "e1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("Join unknown client error = %v, want ErrClientNotFound", err)
	}
	if err := hub.Leave(uuid.New(), "e1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("Leave unknown client error = %v, want ErrClientNotFound", err)
	}
}

func TestDisconnectClosesStreamAndEmptiesRooms(t *testing.T) {
	hub := NewHub(4, logger.Discard())
	cl := hub.Connect()
	_ = hub.Join(cl.ID, "e1")
	_ = hub.Join(cl.ID, "e2")

	hub.Disconnect(cl)
	hub.Disconnect(cl)

	if _, ok := <-cl.Messages(); ok {
		t.Fatal("Messages channel still open after Disconnect")
	}
	for _, e := range []string{"e1", "e2"} {
		if got := hub.Members(e); got != 0 {
			t.Fatalf("Members(%s) = %d, want 0", e, got)
		}
	}
	if err := hub.Join(cl.ID, "e1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("Join after Disconnect error = %v, want ErrClientNotFound", err)
	}
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub(1, logger.Discard())
	slow, fast := hub.Connect(), hub.Connect()
	_ = hub.Join(slow.ID, "e1")
	_ = hub.Join(fast.ID, "e1")

	if got := hub.Broadcast(SeatUpdate{EventID: "e1", AvailableSeats: 5}); got != 2 {
		t.Fatalf("first Broadcast delivered = %d, want 2", got)
	}
	<-fast.Messages()

	if got := hub.Broadcast(SeatUpdate{EventID: "e1", AvailableSeats: 4}); got != 1 {
		t.Fatalf("second Broadcast delivered = %d, want 1", got)
	}
}

func TestPublishImplementsPublisher(t *testing.T) {
	var p Publisher = NewHub(1, logger.Discard())
	if err := p.Publish(context.Background(), SeatUpdate{EventID: "nobody"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
