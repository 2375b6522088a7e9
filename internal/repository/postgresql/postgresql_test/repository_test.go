package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, repo user.UserRepository, email string, role user.Role) user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), user.User{
		ID:           uuid.NewString(),
		Firstname:    "Test",
		Lastname:     email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func createTeam(t *testing.T, repo team.TeamRepository, name, managerID string, members ...string) team.Team {
	t.Helper()
	ctx := context.Background()
	tm, err := repo.Create(ctx, team.Team{ID: uuid.NewString(), Name: name, ManagerID: managerID})
	require.NoError(t, err)
	for _, m := range members {
		_, err := repo.AddMember(ctx, tm.ID, m)
		require.NoError(t, err)
	}
	return tm
}

// Test user constraints and the monthly lateness counter
func TestUserRepository_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	teams := postgresql.NewTeamRepository(setup.DB)

	u := createUser(t, users, "ada@example.com", user.RoleEmployee)
	_, err := users.Create(ctx, user.User{ID: uuid.NewString(), Firstname: "A", Lastname: "B", Email: "ada@example.com", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	require.NoError(t, users.ApplyLateness(ctx, u.ID, "2025-12", true))
	require.NoError(t, users.ApplyLateness(ctx, u.ID, "2025-12", false))
	require.NoError(t, users.ApplyLateness(ctx, u.ID, "2025-12", true))
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LatenessCount)

	require.NoError(t, users.ApplyLateness(ctx, u.ID, "2026-01", true))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LatenessCount)
	require.NotNil(t, got.LatenessMonth)
	assert.Equal(t, "2026-01", *got.LatenessMonth)

	assert.ErrorIs(t, users.ApplyLateness(ctx, uuid.NewString(), "2026-01", true), user.ErrUserNotFound)

	manager := createUser(t, users, "boss@example.com", user.RoleManager)
	createTeam(t, teams, "Ops", manager.ID)
	assert.ErrorIs(t, users.Delete(ctx, manager.ID), user.ErrUserManagesTeam)
}

// Test broad and strict manager scope resolution
func TestTeamRepository_Scope_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	teams := postgresql.NewTeamRepository(setup.DB)

	managerA := createUser(t, users, "a@example.com", user.RoleManager)
	managerB := createUser(t, users, "b@example.com", user.RoleManager)
	alice := createUser(t, users, "alice@example.com", user.RoleEmployee)
	bob := createUser(t, users, "bob@example.com", user.RoleEmployee)

	teamA := createTeam(t, teams, "A", managerA.ID, alice.ID, managerB.ID)
	createTeam(t, teams, "B", managerB.ID, bob.ID)

	_, err := teams.AddMember(ctx, teamA.ID, alice.ID)
	assert.ErrorIs(t, err, team.ErrMemberExists)

	broad, err := teams.ScopeUserIDs(ctx, managerB.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{managerA.ID, managerB.ID, alice.ID, bob.ID}, broad)

	strict, err := teams.StrictScopeUserIDs(ctx, managerB.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob.ID}, strict)

	members, err := teams.ListMemberIDs(ctx, teamA.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID, managerB.ID}, members)
}

// Test the one-open-clock index and conditional close
func TestClockRepository_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	clocks := postgresql.NewClockRepository(setup.DB)

	u := createUser(t, users, "clock@example.com", user.RoleEmployee)
	in := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	opened, err := clocks.Create(ctx, clock.Clock{ID: uuid.NewString(), UserID: u.ID, ClockIn: in})
	require.NoError(t, err)
	_, err = clocks.Create(ctx, clock.Clock{ID: uuid.NewString(), UserID: u.ID, ClockIn: in.Add(time.Hour)})
	assert.ErrorIs(t, err, clock.ErrOpenClockExists)

	out := in.Add(8 * time.Hour)
	hours := 8.0
	opened.ClockOut, opened.HoursWorked, opened.Late = &out, &hours, true
	closed, err := clocks.Close(ctx, opened)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())

	_, err = clocks.Close(ctx, opened)
	assert.ErrorIs(t, err, clock.ErrClockAlreadyClosed)

	sum, err := clocks.SumHours(ctx, u.ID, in, out)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, sum, 0.001)

	changed, err := users.ReconcileLateness(ctx, "2025-01", in.AddDate(0, 0, -5), in.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LatenessCount)
}

// Test default templates are idempotent and template days are unique
func TestPlanningRepository_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	plannings := postgresql.NewPlanningRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	u := createUser(t, users, "plan@example.com", user.RoleEmployee)
	withIDs := func() []planning.Planning {
		plans := planning.DefaultTemplates(u.ID, time.UTC)
		for i := range plans {
			plans[i].ID = uuid.NewString()
		}
		return plans
	}

	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		return plannings.CreateTemplates(ctx, withIDs())
	}))
	require.NoError(t, plannings.CreateTemplates(ctx, withIDs()))

	templates, err := plannings.ListTemplates(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, templates, 5)

	day := 0
	_, err = plannings.Create(ctx, planning.Planning{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		IsTemplate: true,
		DayOfWeek:  &day,
		StartTime:  planning.TemplateTime(8, 0, time.UTC),
		EndTime:    planning.TemplateTime(16, 0, time.UTC),
	})
	assert.ErrorIs(t, err, planning.ErrTemplateDayExists)
}

// Test manager KPI visibility covers own, team and in-scope user KPIs
func TestKPIRepository_ListForManager_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	teams := postgresql.NewTeamRepository(setup.DB)
	kpis := postgresql.NewKPIRepository(setup.DB)

	admin := createUser(t, users, "admin@example.com", user.RoleAdmin)
	manager := createUser(t, users, "m@example.com", user.RoleManager)
	worker := createUser(t, users, "w@example.com", user.RoleEmployee)
	stranger := createUser(t, users, "s@example.com", user.RoleEmployee)
	tm := createTeam(t, teams, "Desk", manager.ID, worker.ID)

	mk := func(name string, scope kpi.Scope, userID, teamID *string, by string) {
		_, err := kpis.Create(ctx, kpi.KPI{
			ID: uuid.NewString(), Name: name, Metric: kpi.MetricLateness, Scope: scope,
			TargetUserID: userID, TargetTeamID: teamID, CreatedBy: by,
		})
		require.NoError(t, err)
	}
	mk("team", kpi.ScopeTeam, nil, &tm.ID, admin.ID)
	mk("worker", kpi.ScopeUser, &worker.ID, nil, admin.ID)
	mk("stranger", kpi.ScopeUser, &stranger.ID, nil, admin.ID)
	mk("own", kpi.ScopeUser, &stranger.ID, nil, manager.ID)

	visible, err := kpis.ListForManager(ctx, manager.ID, []string{tm.ID}, []string{manager.ID, worker.ID})
	require.NoError(t, err)
	names := make([]string, 0, len(visible))
	for _, k := range visible {
		names = append(names, k.Name)
	}
	assert.ElementsMatch(t, []string{"team", "worker", "own"}, names)

	mine, err := kpis.ListForUser(ctx, worker.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "worker", mine[0].Name)
}

// Test a reconcile landing between close and counter update leaves the count exact
func TestClockOut_ReconcileBetweenCloseAndCounter_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	clocks := postgresql.NewClockRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	u := createUser(t, users, "race@example.com", user.RoleEmployee)
	in := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	opened, err := clocks.Create(ctx, clock.Clock{ID: uuid.NewString(), UserID: u.ID, ClockIn: in})
	require.NoError(t, err)

	out := in.Add(8 * time.Hour)
	hours := 8.0
	opened.ClockOut, opened.HoursWorked, opened.Late = &out, &hours, true
	from, to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	err = tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := clocks.Close(txCtx, opened); err != nil {
			return err
		}
		if _, err := users.ReconcileLateness(ctx, "2025-03", from, to); err != nil {
			return err
		}
		return tx.WithinTx(txCtx, func(txCtx context.Context) error {
			return users.ApplyLateness(txCtx, u.ID, "2025-03", true)
		})
	})
	require.NoError(t, err)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LatenessCount)

	changed, err := users.ReconcileLateness(ctx, "2025-03", from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}

// Test a failing nested step rolls back alone
func TestTransactor_NestedFailureKeepsOuterWork_Postgres(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(setup.DB)
	clocks := postgresql.NewClockRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	u := createUser(t, users, "nested@example.com", user.RoleEmployee)
	in := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	opened, err := clocks.Create(ctx, clock.Clock{ID: uuid.NewString(), UserID: u.ID, ClockIn: in})
	require.NoError(t, err)
	out := in.Add(8 * time.Hour)
	hours := 8.0
	opened.ClockOut, opened.HoursWorked = &out, &hours

	err = tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := clocks.Close(txCtx, opened); err != nil {
			return err
		}
		nested := tx.WithinTx(txCtx, func(txCtx context.Context) error {
			return users.ApplyLateness(txCtx, "not-a-uuid", "2025-03", false)
		})
		assert.Error(t, nested)
		return nil
	})
	require.NoError(t, err)

	stored, err := clocks.GetByID(ctx, opened.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsOpen())
}
