package user

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]User, error)
	ListByIDs(ctx context.Context, ids []string) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error

	// ApplyLateness records one clock-out against the monthly counter in a single statement.
	ApplyLateness(ctx context.Context, userID, monthKey string, late bool) error
	// ReconcileLateness rewrites every user's counter for monthKey from clocks with clock_in in [from, to).
	ReconcileLateness(ctx context.Context, monthKey string, from, to time.Time) (int64, error)
}
