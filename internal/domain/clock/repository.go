package clock

import (
	"context"
	"time"
)

// ListFilter narrows clock listings. A nil UserIDs means every user.
type ListFilter struct {
	UserIDs []string
	From    *time.Time
	To      *time.Time
}

type ClockRepository interface {
	Create(ctx context.Context, c Clock) (Clock, error)
	GetByID(ctx context.Context, id string) (Clock, error)
	HasOpenClock(ctx context.Context, userID string) (bool, error)
	// Close persists the clock-out fields only if the clock is still open.
	Close(ctx context.Context, c Clock) (Clock, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]Clock, error)

	// ListInRange returns the user's clocks with clock_in in [start, end].
	ListInRange(ctx context.Context, userID string, start, end time.Time) ([]Clock, error)
	SumHours(ctx context.Context, userID string, start, end time.Time) (float64, error)
	CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error)
}
