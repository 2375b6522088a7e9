package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
)

type PlanningServiceImpl struct {
	plannings planning.PlanningRepository
	users     user.UserRepository
	evaluator access.Evaluator
	tx        postgresql.Transactor
	loc       *time.Location
}

func NewPlanningService(
	planningRepository planning.PlanningRepository,
	userRepository user.UserRepository,
	evaluator access.Evaluator,
	tx postgresql.Transactor,
	loc *time.Location,
) planning.PlanningService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlanningServiceImpl{
		plannings: planningRepository,
		users:     userRepository,
		evaluator: evaluator,
		tx:        tx,
		loc:       loc,
	}
}

// ListTemplates implements planning.PlanningService.
func (s *PlanningServiceImpl) ListTemplates(ctx context.Context, requester user.Identity, userID string) ([]planning.PlanningResponse, error) {
	if err := s.authorizeUser(ctx, requester, userID); err != nil {
		return nil, err
	}

	plans, err := s.plannings.ListTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if len(plans) > 0 {
		return s.responses(plans), nil
	}

	defaults := planning.DefaultTemplates(userID, s.loc)
	for i := range defaults {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate planning id: %w", err)
		}
		defaults[i].ID = id.String()
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.plannings.CreateTemplates(ctx, defaults); err != nil {
			return fmt.Errorf("create default templates: %w", err)
		}
		plans, err = s.plannings.ListTemplates(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.responses(plans), nil
}

// ListDated implements planning.PlanningService.
func (s *PlanningServiceImpl) ListDated(ctx context.Context, requester user.Identity, q planning.ListDatedQuery) ([]planning.PlanningResponse, error) {
	if err := s.authorizeUser(ctx, requester, q.UserID); err != nil {
		return nil, err
	}

	plans, err := s.plannings.ListDated(ctx, q.UserID, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("list dated plannings: %w", err)
	}
	return s.responses(plans), nil
}

// Create implements planning.PlanningService.
func (s *PlanningServiceImpl) Create(ctx context.Context, requester user.Identity, req planning.CreatePlanningRequest) (planning.PlanningResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionPlanningWrite) {
		return planning.PlanningResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return planning.PlanningResponse{}, err
	}
	if err := s.authorizeUser(ctx, requester, req.UserID); err != nil {
		return planning.PlanningResponse{}, err
	}

	p := req.Build(s.loc)
	id, err := uuid.NewV7()
	if err != nil {
		return planning.PlanningResponse{}, fmt.Errorf("generate planning id: %w", err)
	}
	p.ID = id.String()

	created, err := s.plannings.Create(ctx, p)
	if err != nil {
		return planning.PlanningResponse{}, err
	}
	return planning.NewPlanningResponse(created, s.loc), nil
}

// Update implements planning.PlanningService.
func (s *PlanningServiceImpl) Update(ctx context.Context, requester user.Identity, id string, req planning.UpdatePlanningRequest) (planning.PlanningResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionPlanningWrite) {
		return planning.PlanningResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return planning.PlanningResponse{}, err
	}

	current, err := s.plannings.GetByID(ctx, id)
	if err != nil {
		return planning.PlanningResponse{}, err
	}
	if err := s.evaluator.Authorize(ctx, requester, current.UserID); err != nil {
		return planning.PlanningResponse{}, err
	}

	next, err := req.Apply(current, s.loc)
	if err != nil {
		return planning.PlanningResponse{}, err
	}

	updated, err := s.plannings.Update(ctx, next)
	if err != nil {
		return planning.PlanningResponse{}, err
	}
	return planning.NewPlanningResponse(updated, s.loc), nil
}

// Delete implements planning.PlanningService.
func (s *PlanningServiceImpl) Delete(ctx context.Context, requester user.Identity, id string) error {
	if !user.HasPermission(requester.Role, user.PermissionPlanningWrite) {
		return user.ErrManagerAccessRequired
	}

	current, err := s.plannings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, requester, current.UserID); err != nil {
		return err
	}
	return s.plannings.Delete(ctx, id)
}

// authorizeUser checks access before existence so denied callers learn nothing about ids outside their scope.
func (s *PlanningServiceImpl) authorizeUser(ctx context.Context, requester user.Identity, userID string) error {
	if err := s.evaluator.Authorize(ctx, requester, userID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (s *PlanningServiceImpl) responses(plans []planning.Planning) []planning.PlanningResponse {
	out := make([]planning.PlanningResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, planning.NewPlanningResponse(p, s.loc))
	}
	return out
}
