package kpi

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/memory"
	accesssvc "github.com/cmlabs-hris/timetrack-backend-go/internal/service/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kpiFixture struct {
	store   *memory.Store
	service *KPIServiceImpl

	admin, manager, outsiderManager user.User
	members                         []user.User
	stranger                        user.User
	teamID                          string
}

func newKPIFixture(t *testing.T) *kpiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &kpiFixture{store: store}
	f.admin = seedUser(t, store, "admin@example.com", user.RoleAdmin)
	f.manager = seedUser(t, store, "manager@example.com", user.RoleManager)
	f.outsiderManager = seedUser(t, store, "other-manager@example.com", user.RoleManager)
	f.stranger = seedUser(t, store, "stranger@example.com", user.RoleEmployee)

	tm, err := store.Teams.Create(ctx, team.Team{Name: "Ops", ManagerID: f.manager.ID})
	require.NoError(t, err)
	f.teamID = tm.ID

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"zed@example.com", "amy@example.com", "max@example.com"} {
		store.Now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		u := seedUser(t, store, email, user.RoleEmployee)
		_, err := store.Teams.AddMember(ctx, tm.ID, u.ID)
		require.NoError(t, err)
		seedTemplate(t, store, u.ID, 0, 9, 17)
		f.members = append(f.members, u)
	}
	store.Now = time.Now

	// First member late on Monday, second on time, third has no clocks.
	seedClosedClock(store, f.members[0].ID, at(monday, 9, 20), at(monday, 17, 0))
	seedClosedClock(store, f.members[1].ID, at(monday, 9, 0), at(monday, 17, 30))

	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	evaluator := accesssvc.NewEvaluator(store.Teams, accesssvc.NewResolver(store.Teams, nil))
	svc := NewKPIService(store.KPIs, store.Users, store.Teams, engine, evaluator, time.UTC, 2).(*KPIServiceImpl)
	svc.now = func() time.Time { return monday.AddDate(0, 0, 3) }
	f.service = svc
	return f
}

func who(u user.User) user.Identity {
	return user.Identity{UserID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

// Test team compute returns one entry per member in membership order
func TestKPIService_Compute_TeamOfThree(t *testing.T) {
	f := newKPIFixture(t)

	resp, err := f.service.Compute(context.Background(), who(f.manager), kpi.ComputeRequest{
		Scope:        "team",
		TargetTeamID: ptr(f.teamID),
	})

	require.NoError(t, err)
	require.Len(t, resp.TeamResults, 3)
	for i, m := range f.members {
		assert.Equal(t, m.ID, resp.TeamResults[i].User.ID)
	}
	assert.Equal(t, kpi.LatenessStats{LateCount: 1, TotalDays: 1, OnTimeDays: 0}, resp.TeamResults[0].Lateness)
	assert.Equal(t, kpi.LatenessStats{LateCount: 0, TotalDays: 1, OnTimeDays: 1}, resp.TeamResults[1].Lateness)
	assert.Equal(t, kpi.LatenessStats{}, resp.TeamResults[2].Lateness)
	assert.Equal(t, 8.5, resp.TeamResults[1].Hours.Total)
	assert.Nil(t, resp.User)

	raw, err := json.Marshal(resp.TeamResults[2])
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Contains(t, keys, "user")
	assert.Contains(t, keys, "lateness")
	assert.Contains(t, keys, "hours")
}

// Test user compute defaults the target to the requester
func TestKPIService_Compute_SelfDefault(t *testing.T) {
	f := newKPIFixture(t)
	member := f.members[0]

	resp, err := f.service.Compute(context.Background(), who(member), kpi.ComputeRequest{Scope: "user"})

	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, member.ID, resp.User.ID)
	assert.Equal(t, 1, resp.Lateness.LateCount)
	assert.Empty(t, resp.TeamResults)
}

// Test employees cannot compute for others or for teams
func TestKPIService_Compute_EmployeeDenied(t *testing.T) {
	f := newKPIFixture(t)
	employee := who(f.members[0])
	ctx := context.Background()

	_, err := f.service.Compute(ctx, employee, kpi.ComputeRequest{Scope: "user", TargetUserID: ptr(f.members[1].ID)})
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Compute(ctx, employee, kpi.ComputeRequest{Scope: "team", TargetTeamID: ptr(f.teamID)})
	assert.ErrorIs(t, err, access.ErrAccessDenied)
}

// Test managers outside the team are denied, and missing targets do not leak
func TestKPIService_Compute_ManagerOutsideScope(t *testing.T) {
	f := newKPIFixture(t)
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	_, err := f.service.Compute(ctx, who(f.outsiderManager), kpi.ComputeRequest{Scope: "user", TargetUserID: ptr(f.members[0].ID)})
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Compute(ctx, who(f.outsiderManager), kpi.ComputeRequest{Scope: "user", TargetUserID: ptr(missing)})
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Compute(ctx, who(f.admin), kpi.ComputeRequest{Scope: "user", TargetUserID: ptr(missing)})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.service.Compute(ctx, who(f.admin), kpi.ComputeRequest{Scope: "team", TargetTeamID: ptr(missing)})
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

// Test invalid scopes and inverted ranges are validation errors
func TestKPIService_Compute_Validation(t *testing.T) {
	f := newKPIFixture(t)
	ctx := context.Background()

	_, err := f.service.Compute(ctx, who(f.admin), kpi.ComputeRequest{Scope: "galaxy"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.service.Compute(ctx, who(f.admin), kpi.ComputeRequest{
		Scope: "user",
		Start: ptr("2025-01-10"),
		End:   ptr("2025-01-01"),
	})
	assert.ErrorAs(t, err, &verrs)
}

// Test persisted KPI results over the default window
func TestKPIService_Results_Persisted(t *testing.T) {
	f := newKPIFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, who(f.manager), kpi.CreateKPIRequest{
		Name:         "Ops lateness",
		Metric:       "lateness",
		Scope:        "team",
		TargetTeamID: ptr(f.teamID),
	})
	require.NoError(t, err)

	results, err := f.service.Results(ctx, who(f.manager), created.ID, kpi.RangeQuery{})
	require.NoError(t, err)

	assert.Equal(t, created.ID, results.KPIID)
	assert.Equal(t, kpi.MetricLateness, results.Metric)
	require.Len(t, results.Results, 3)
	require.NotNil(t, results.Results[0].Value)
	assert.Equal(t, 1.0, *results.Results[0].Value)
	assert.Equal(t, 0.0, *results.Results[2].Value)

	end, err := time.Parse(time.RFC3339, results.End)
	require.NoError(t, err)
	start, err := time.Parse(time.RFC3339, results.Start)
	require.NoError(t, err)
	assert.Equal(t, kpi.DefaultWindow, end.Sub(start))
}

// Test KPI creation is limited by role and scope
func TestKPIService_Create_Permissions(t *testing.T) {
	f := newKPIFixture(t)
	ctx := context.Background()
	req := func() kpi.CreateKPIRequest {
		return kpi.CreateKPIRequest{Name: "Hours", Metric: "hours", Scope: "team", TargetTeamID: ptr(f.teamID)}
	}

	_, err := f.service.Create(ctx, who(f.members[0]), req())
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	_, err = f.service.Create(ctx, who(f.outsiderManager), req())
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Create(ctx, who(f.admin), req())
	assert.NoError(t, err)
}

// Test listing is filtered per role
func TestKPIService_List_RoleFiltered(t *testing.T) {
	f := newKPIFixture(t)
	ctx := context.Background()

	teamKPI, err := f.service.Create(ctx, who(f.admin), kpi.CreateKPIRequest{
		Name: "Team", Metric: "hours", Scope: "team", TargetTeamID: ptr(f.teamID),
	})
	require.NoError(t, err)
	memberKPI, err := f.service.Create(ctx, who(f.admin), kpi.CreateKPIRequest{
		Name: "Member", Metric: "lateness", Scope: "user", TargetUserID: ptr(f.members[0].ID),
	})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, who(f.admin), kpi.CreateKPIRequest{
		Name: "Stranger", Metric: "lateness", Scope: "user", TargetUserID: ptr(f.stranger.ID),
	})
	require.NoError(t, err)

	all, err := f.service.List(ctx, who(f.admin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	managed, err := f.service.List(ctx, who(f.manager))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{teamKPI.ID, memberKPI.ID}, ids(managed))

	own, err := f.service.List(ctx, who(f.members[0]))
	require.NoError(t, err)
	assert.Equal(t, []string{memberKPI.ID}, ids(own))

	err = f.service.Delete(ctx, who(f.manager), teamKPI.ID)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
	assert.NoError(t, f.service.Delete(ctx, who(f.admin), teamKPI.ID))
	_, err = f.service.Get(ctx, who(f.admin), teamKPI.ID)
	assert.ErrorIs(t, err, kpi.ErrKPINotFound)
}

func ids(kpis []kpi.KPIResponse) []string {
	out := make([]string, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, k.ID)
	}
	return out
}
