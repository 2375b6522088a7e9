package kpi

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	modePersisted = "persisted"
	modeAdHoc     = "adhoc"
)

type KPIServiceImpl struct {
	kpis      kpi.KPIRepository
	users     user.UserRepository
	teams     team.TeamRepository
	engine    kpi.MetricsEngine
	evaluator access.Evaluator
	loc       *time.Location
	workers   int
	now       func() time.Time
}

func NewKPIService(
	kpiRepository kpi.KPIRepository,
	userRepository user.UserRepository,
	teamRepository team.TeamRepository,
	engine kpi.MetricsEngine,
	evaluator access.Evaluator,
	loc *time.Location,
	workers int,
) kpi.KPIService {
	if workers < 1 {
		workers = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &KPIServiceImpl{
		kpis:      kpiRepository,
		users:     userRepository,
		teams:     teamRepository,
		engine:    engine,
		evaluator: evaluator,
		loc:       loc,
		workers:   workers,
		now:       time.Now,
	}
}

// Create implements kpi.KPIService.
func (s *KPIServiceImpl) Create(ctx context.Context, requester user.Identity, req kpi.CreateKPIRequest) (kpi.KPIResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionKPICreate) {
		return kpi.KPIResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return kpi.KPIResponse{}, err
	}

	newKPI := req.Build(requester.UserID)
	if err := s.authorizeTarget(ctx, requester, newKPI.Scope, newKPI.TargetID()); err != nil {
		return kpi.KPIResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return kpi.KPIResponse{}, fmt.Errorf("generate kpi id: %w", err)
	}
	newKPI.ID = id.String()

	created, err := s.kpis.Create(ctx, newKPI)
	if err != nil {
		return kpi.KPIResponse{}, fmt.Errorf("create kpi: %w", err)
	}
	return kpi.NewKPIResponse(created), nil
}

// Get implements kpi.KPIService.
func (s *KPIServiceImpl) Get(ctx context.Context, requester user.Identity, id string) (kpi.KPIResponse, error) {
	k, err := s.load(ctx, requester, id)
	if err != nil {
		return kpi.KPIResponse{}, err
	}
	return kpi.NewKPIResponse(k), nil
}

// List implements kpi.KPIService.
func (s *KPIServiceImpl) List(ctx context.Context, requester user.Identity) ([]kpi.KPIResponse, error) {
	var (
		kpis []kpi.KPI
		err  error
	)

	switch requester.Role {
	case user.RoleAdmin:
		kpis, err = s.kpis.List(ctx)
	case user.RoleManager:
		var teamIDs, userIDs []string
		teamIDs, userIDs, err = s.managerTargets(ctx, requester.UserID)
		if err != nil {
			return nil, err
		}
		kpis, err = s.kpis.ListForManager(ctx, requester.UserID, teamIDs, userIDs)
	default:
		kpis, err = s.kpis.ListForUser(ctx, requester.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}

	responses := make([]kpi.KPIResponse, 0, len(kpis))
	for _, k := range kpis {
		responses = append(responses, kpi.NewKPIResponse(k))
	}
	return responses, nil
}

// Delete implements kpi.KPIService.
func (s *KPIServiceImpl) Delete(ctx context.Context, requester user.Identity, id string) error {
	if !user.HasPermission(requester.Role, user.PermissionKPIDelete) {
		return user.ErrAdminPrivilegeRequired
	}
	return s.kpis.Delete(ctx, id)
}

// Results implements kpi.KPIService.
func (s *KPIServiceImpl) Results(ctx context.Context, requester user.Identity, id string, q kpi.RangeQuery) (kpi.ResultsResponse, error) {
	k, err := s.load(ctx, requester, id)
	if err != nil {
		return kpi.ResultsResponse{}, err
	}

	start, end, err := q.Resolve(s.now(), s.loc)
	if err != nil {
		return kpi.ResultsResponse{}, err
	}

	began := time.Now()
	results, err := s.ComputeForScope(ctx, k.Scope, k.TargetID(), start, end)
	if err != nil {
		return kpi.ResultsResponse{}, err
	}
	metrics.ObserveKPICompute(modePersisted, string(k.Scope), time.Since(began))

	entries := make([]kpi.ResultEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, kpi.ResultEntry{UserResult: r, Value: r.Value(k.Metric)})
	}

	return kpi.ResultsResponse{
		KPIID:   k.ID,
		Name:    k.Name,
		Metric:  k.Metric,
		Scope:   k.Scope,
		Start:   s.format(start),
		End:     s.format(end),
		Results: entries,
	}, nil
}

// Compute implements kpi.KPIService.
func (s *KPIServiceImpl) Compute(ctx context.Context, requester user.Identity, req kpi.ComputeRequest) (kpi.ComputeResponse, error) {
	if err := req.Validate(); err != nil {
		return kpi.ComputeResponse{}, err
	}

	scope := req.ParsedScope()
	targetID := requester.UserID
	if scope == kpi.ScopeTeam {
		targetID = *req.TargetTeamID
	} else if req.TargetUserID != nil {
		targetID = *req.TargetUserID
	}

	if err := s.authorizeTarget(ctx, requester, scope, targetID); err != nil {
		return kpi.ComputeResponse{}, err
	}

	start, end, err := req.Range().Resolve(s.now(), s.loc)
	if err != nil {
		return kpi.ComputeResponse{}, err
	}

	began := time.Now()
	results, err := s.ComputeForScope(ctx, scope, targetID, start, end)
	if err != nil {
		return kpi.ComputeResponse{}, err
	}
	metrics.ObserveKPICompute(modeAdHoc, string(scope), time.Since(began))

	resp := kpi.ComputeResponse{Start: s.format(start), End: s.format(end)}
	if scope == kpi.ScopeTeam {
		resp.TeamResults = results
		return resp, nil
	}
	r := results[0]
	resp.User = &r.User
	resp.Lateness = &r.Lateness
	resp.Hours = &r.Hours
	return resp, nil
}

// ComputeForScope implements kpi.KPIService.
func (s *KPIServiceImpl) ComputeForScope(ctx context.Context, scope kpi.Scope, targetID string, start, end time.Time) ([]kpi.UserResult, error) {
	switch scope {
	case kpi.ScopeUser:
		u, err := s.users.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		r, err := s.userResult(ctx, u, start, end)
		if err != nil {
			return nil, err
		}
		return []kpi.UserResult{r}, nil
	case kpi.ScopeTeam:
		return s.teamResults(ctx, targetID, start, end)
	default:
		return nil, fmt.Errorf("%w: %q", kpi.ErrInvalidScope, scope)
	}
}

// teamResults computes members concurrently; results keep membership order.
func (s *KPIServiceImpl) teamResults(ctx context.Context, teamID string, start, end time.Time) ([]kpi.UserResult, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	memberIDs, err := s.teams.ListMemberIDs(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	users, err := s.users.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	members := make([]user.User, 0, len(memberIDs))
	for _, id := range memberIDs {
		if u, ok := byID[id]; ok {
			members = append(members, u)
		}
	}

	results := make([]kpi.UserResult, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, u := range members {
		i, u := i, u
		g.Go(func() error {
			r, err := s.userResult(gctx, u, start, end)
			if err != nil {
				return fmt.Errorf("compute for user %s: %w", u.ID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *KPIServiceImpl) userResult(ctx context.Context, u user.User, start, end time.Time) (kpi.UserResult, error) {
	late, err := s.engine.ComputeMetric(ctx, u.ID, kpi.MetricLateness, start, end)
	if err != nil {
		return kpi.UserResult{}, err
	}
	hours, err := s.engine.ComputeMetric(ctx, u.ID, kpi.MetricHours, start, end)
	if err != nil {
		return kpi.UserResult{}, err
	}
	totalDays, err := s.engine.TotalDays(ctx, u.ID, start, end)
	if err != nil {
		return kpi.UserResult{}, err
	}

	lateCount := int(*late)
	onTime := totalDays - lateCount
	if onTime < 0 {
		onTime = 0
	}

	return kpi.UserResult{
		User: user.NewSummary(u),
		Lateness: kpi.LatenessStats{
			LateCount:  lateCount,
			TotalDays:  totalDays,
			OnTimeDays: onTime,
		},
		Hours: kpi.HoursStats{
			Total:     *hours,
			TotalDays: totalDays,
		},
	}, nil
}

// load fetches a KPI the requester may read.
func (s *KPIServiceImpl) load(ctx context.Context, requester user.Identity, id string) (kpi.KPI, error) {
	k, err := s.kpis.GetByID(ctx, id)
	if err != nil {
		return kpi.KPI{}, err
	}
	if requester.IsAdmin() || k.CreatedBy == requester.UserID {
		return k, nil
	}
	if err := s.authorizeTarget(ctx, requester, k.Scope, k.TargetID()); err != nil {
		return kpi.KPI{}, err
	}
	return k, nil
}

// authorizeTarget checks access first so that non-admins learn nothing about
// targets outside their reach.
func (s *KPIServiceImpl) authorizeTarget(ctx context.Context, requester user.Identity, scope kpi.Scope, targetID string) error {
	switch scope {
	case kpi.ScopeTeam:
		return s.evaluator.AuthorizeTeam(ctx, requester, targetID)
	case kpi.ScopeUser:
		if err := s.evaluator.Authorize(ctx, requester, targetID); err != nil {
			return err
		}
		if _, err := s.users.GetByID(ctx, targetID); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", kpi.ErrInvalidScope, scope)
	}
}

func (s *KPIServiceImpl) managerTargets(ctx context.Context, managerID string) ([]string, []string, error) {
	teams, err := s.teams.ListForUser(ctx, managerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list manager teams: %w", err)
	}
	teamIDs := make([]string, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
	}

	scope, err := s.evaluator.Resolver().ResolveManagerScope(ctx, managerID)
	if err != nil {
		return nil, nil, err
	}
	userIDs := make([]string, 0, len(scope))
	for id := range scope {
		userIDs = append(userIDs, id)
	}
	return teamIDs, userIDs, nil
}

func (s *KPIServiceImpl) format(t time.Time) string {
	return t.In(s.loc).Format(time.RFC3339)
}
