package clock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
)

type ClockServiceImpl struct {
	clocks    clock.ClockRepository
	users     user.UserRepository
	plannings planning.PlanningRepository
	evaluator access.Evaluator
	tx        postgresql.Transactor
	loc       *time.Location
	now       func() time.Time
}

func NewClockService(
	clockRepository clock.ClockRepository,
	userRepository user.UserRepository,
	planningRepository planning.PlanningRepository,
	evaluator access.Evaluator,
	tx postgresql.Transactor,
	loc *time.Location,
) clock.ClockService {
	if loc == nil {
		loc = time.UTC
	}
	return &ClockServiceImpl{
		clocks:    clockRepository,
		users:     userRepository,
		plannings: planningRepository,
		evaluator: evaluator,
		tx:        tx,
		loc:       loc,
		now:       time.Now,
	}
}

// ClockIn implements clock.ClockService.
func (s *ClockServiceImpl) ClockIn(ctx context.Context, requester user.Identity, req clock.ClockInRequest) (clock.ClockResponse, error) {
	if err := req.Validate(s.now()); err != nil {
		return clock.ClockResponse{}, err
	}

	targetID := requester.UserID
	if req.UserID != nil {
		targetID = *req.UserID
	}
	if err := s.evaluator.Authorize(ctx, requester, targetID); err != nil {
		return clock.ClockResponse{}, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return clock.ClockResponse{}, err
	}

	open, err := s.clocks.HasOpenClock(ctx, targetID)
	if err != nil {
		return clock.ClockResponse{}, fmt.Errorf("check open clock: %w", err)
	}
	if open {
		return clock.ClockResponse{}, clock.ErrOpenClockExists
	}

	id, err := uuid.NewV7()
	if err != nil {
		return clock.ClockResponse{}, fmt.Errorf("generate clock id: %w", err)
	}

	created, err := s.clocks.Create(ctx, clock.Clock{
		ID:      id.String(),
		UserID:  targetID,
		ClockIn: req.Time(),
	})
	if err != nil {
		return clock.ClockResponse{}, err
	}

	metrics.ObserveClockEvent("clock_in", false)
	return clock.NewClockResponse(created), nil
}

// ClockOut implements clock.ClockService.
func (s *ClockServiceImpl) ClockOut(ctx context.Context, requester user.Identity, clockID string, req clock.ClockOutRequest) (clock.ClockResponse, error) {
	current, err := s.clocks.GetByID(ctx, clockID)
	if err != nil {
		return clock.ClockResponse{}, err
	}
	if err := s.evaluator.Authorize(ctx, requester, current.UserID); err != nil {
		return clock.ClockResponse{}, err
	}
	if !current.IsOpen() {
		return clock.ClockResponse{}, clock.ErrClockAlreadyClosed
	}
	if err := req.Validate(current.ClockIn, s.now()); err != nil {
		return clock.ClockResponse{}, err
	}

	plans, err := s.plannings.ListForUser(ctx, current.UserID)
	if err != nil {
		return clock.ClockResponse{}, fmt.Errorf("list plannings: %w", err)
	}
	plan := planning.Resolve(plans, current.ClockIn, s.loc)

	derived := clock.Derive(current.ClockIn, req.Time(), plan, s.loc)
	current.Close(req.Time(), derived)

	var closed clock.Clock
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		closed, err = s.clocks.Close(ctx, current)
		if err != nil {
			return err
		}
		s.applyLateness(ctx, closed)
		return nil
	})
	if err != nil {
		return clock.ClockResponse{}, err
	}

	metrics.ObserveClockEvent("clock_out", derived.Late)

	return clock.NewClockResponse(closed), nil
}

// applyLateness updates the monthly counter in the clock-out transaction, so the
// reconcile job never sees the closed clock without its increment. It runs in
// a nested transaction: failures are logged and roll back only the counter.
func (s *ClockServiceImpl) applyLateness(ctx context.Context, c clock.Clock) {
	monthKey := user.MonthKey(c.ClockIn, s.loc)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.users.ApplyLateness(ctx, c.UserID, monthKey, c.Late)
	})
	if err != nil {
		metrics.IncLatenessCounterFailure()
		slog.Warn("failed to update lateness counter",
			"user_id", c.UserID,
			"clock_id", c.ID,
			"month", monthKey,
			"error", err,
		)
	}
}

// Get implements clock.ClockService.
func (s *ClockServiceImpl) Get(ctx context.Context, requester user.Identity, clockID string) (clock.ClockResponse, error) {
	c, err := s.clocks.GetByID(ctx, clockID)
	if err != nil {
		return clock.ClockResponse{}, err
	}
	if err := s.evaluator.Authorize(ctx, requester, c.UserID); err != nil {
		return clock.ClockResponse{}, err
	}
	return clock.NewClockResponse(c), nil
}

// List implements clock.ClockService.
func (s *ClockServiceImpl) List(ctx context.Context, requester user.Identity, q clock.ListClocksQuery) ([]clock.ClockResponse, error) {
	filter := clock.ListFilter{From: q.From, To: q.To}

	switch requester.Role {
	case user.RoleAdmin:
	case user.RoleManager:
		scope, err := s.evaluator.Resolver().ResolveManagerScope(ctx, requester.UserID)
		if err != nil {
			return nil, err
		}
		filter.UserIDs = make([]string, 0, len(scope))
		for id := range scope {
			filter.UserIDs = append(filter.UserIDs, id)
		}
	default:
		filter.UserIDs = []string{requester.UserID}
	}

	return s.list(ctx, filter)
}

// ListForUser implements clock.ClockService.
func (s *ClockServiceImpl) ListForUser(ctx context.Context, requester user.Identity, userID string, q clock.ListClocksQuery) ([]clock.ClockResponse, error) {
	if err := s.evaluator.Authorize(ctx, requester, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, clock.ListFilter{UserIDs: []string{userID}, From: q.From, To: q.To})
}

// Delete implements clock.ClockService.
func (s *ClockServiceImpl) Delete(ctx context.Context, requester user.Identity, clockID string) error {
	if !user.HasPermission(requester.Role, user.PermissionClockDelete) {
		return user.ErrAdminPrivilegeRequired
	}
	return s.clocks.Delete(ctx, clockID)
}

func (s *ClockServiceImpl) list(ctx context.Context, filter clock.ListFilter) ([]clock.ClockResponse, error) {
	clocks, err := s.clocks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list clocks: %w", err)
	}
	responses := make([]clock.ClockResponse, 0, len(clocks))
	for _, c := range clocks {
		responses = append(responses, clock.NewClockResponse(c))
	}
	return responses, nil
}
