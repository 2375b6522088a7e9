package planning

import (
	"context"
	"time"
)

type PlanningRepository interface {
	Create(ctx context.Context, p Planning) (Planning, error)
	// CreateTemplates inserts templates, skipping days the user already has.
	CreateTemplates(ctx context.Context, plans []Planning) error
	GetByID(ctx context.Context, id string) (Planning, error)
	Update(ctx context.Context, p Planning) (Planning, error)
	Delete(ctx context.Context, id string) error

	// ListForUser returns templates and dated plannings of a user.
	ListForUser(ctx context.Context, userID string) ([]Planning, error)
	ListTemplates(ctx context.Context, userID string) ([]Planning, error)
	ListDated(ctx context.Context, userID string, from, to time.Time) ([]Planning, error)
}
