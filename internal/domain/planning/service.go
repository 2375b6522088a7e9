package planning

import (
	"context"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

type PlanningService interface {
	// ListTemplates returns the user's weekly templates, creating the default week when none exist.
	ListTemplates(ctx context.Context, requester user.Identity, userID string) ([]PlanningResponse, error)
	ListDated(ctx context.Context, requester user.Identity, q ListDatedQuery) ([]PlanningResponse, error)
	Create(ctx context.Context, requester user.Identity, req CreatePlanningRequest) (PlanningResponse, error)
	Update(ctx context.Context, requester user.Identity, id string, req UpdatePlanningRequest) (PlanningResponse, error)
	Delete(ctx context.Context, requester user.Identity, id string) error
}
