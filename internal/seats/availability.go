package seats

import (
	"context"

	"github.com/google/uuid"
)

// Calculator derives the seats a buyer can still claim: the committed
// counter minus every active soft lock. Results are never cached because
// locks lapse continuously.
type Calculator struct {
	locks Repository
}

func NewCalculator(locks Repository) *Calculator {
	return &Calculator{locks: locks}
}

// TrulyAvailable returns availableSeats minus the active lock total for the
// event. The result can be negative when locks outnumber committed seats.
func (c *Calculator) TrulyAvailable(ctx context.Context, eventID uuid.UUID, availableSeats int) (int, error) {
	locked, err := c.locks.SumActive(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return availableSeats - locked, nil
}
