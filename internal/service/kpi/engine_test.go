package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-01-06 is a Monday.
var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

func seedUser(t *testing.T, store *memory.Store, email string, role user.Role) user.User {
	t.Helper()
	u, err := store.Users.Create(context.Background(), user.User{
		Firstname: email,
		Lastname:  "Test",
		Email:     email,
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func seedTemplate(t *testing.T, store *memory.Store, userID string, day, startHour, endHour int) {
	t.Helper()
	_, err := store.Plannings.Create(context.Background(), planning.Planning{
		UserID:     userID,
		IsTemplate: true,
		DayOfWeek:  &day,
		StartTime:  planning.TemplateTime(startHour, 0, time.UTC),
		EndTime:    planning.TemplateTime(endHour, 0, time.UTC),
	})
	require.NoError(t, err)
}

func seedClosedClock(store *memory.Store, userID string, in, out time.Time) {
	hours := clock.HoursBetween(in, out)
	store.Clocks.Seed(clock.Clock{UserID: userID, ClockIn: in, ClockOut: &out, HoursWorked: &hours})
}

// Test no clocks in range yields zero for every metric
func TestEngine_ZeroRowsYieldZero(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, "u@example.com", user.RoleEmployee)
	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	ctx := context.Background()

	hours, err := engine.ComputeMetric(ctx, u.ID, kpi.MetricHours, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.NotNil(t, hours)
	assert.Equal(t, 0.0, *hours)

	late, err := engine.ComputeMetric(ctx, u.ID, kpi.MetricLateness, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.NotNil(t, late)
	assert.Equal(t, 0.0, *late)
}

// Test an empty range returns zero without touching storage
func TestEngine_EmptyRangeSkipsQueries(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, "u@example.com", user.RoleEmployee)
	seedClosedClock(store, u.ID, at(monday, 9, 30), at(monday, 17, 0))
	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	ctx := context.Background()
	instant := at(monday, 9, 30)

	late, err := engine.LateCount(ctx, u.ID, instant, instant)
	require.NoError(t, err)
	hours, err := engine.HoursWorked(ctx, u.ID, instant, instant)
	require.NoError(t, err)
	days, err := engine.TotalDays(ctx, u.ID, instant, instant)
	require.NoError(t, err)

	assert.Zero(t, late)
	assert.Zero(t, hours)
	assert.Zero(t, days)
	assert.Zero(t, store.Clocks.RangeCalls)
}

// Test lateness tolerates the grace period
func TestEngine_LateCount_Grace(t *testing.T) {
	store := memory.NewStore()
	onTime := seedUser(t, store, "ontime@example.com", user.RoleEmployee)
	late := seedUser(t, store, "late@example.com", user.RoleEmployee)
	for _, u := range []user.User{onTime, late} {
		seedTemplate(t, store, u.ID, 0, 9, 17)
	}
	seedClosedClock(store, onTime.ID, at(monday, 9, 5), at(monday, 17, 0))
	seedClosedClock(store, late.ID, at(monday, 9, 6), at(monday, 17, 0))

	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	ctx := context.Background()
	end := monday.AddDate(0, 0, 1)

	count, err := engine.LateCount(ctx, onTime.ID, monday, end)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = engine.LateCount(ctx, late.ID, monday, end)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Test a dated planning overrides the weekday template, and recomputation is stable
func TestEngine_LateCount_DatedOverridesTemplate(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, "u@example.com", user.RoleEmployee)
	seedTemplate(t, store, u.ID, 0, 9, 17)
	seedClosedClock(store, u.ID, at(monday, 9, 30), at(monday, 17, 0))

	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	ctx := context.Background()
	end := monday.AddDate(0, 0, 1)

	count, err := engine.LateCount(ctx, u.ID, monday, end)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "late against the 09:00 template")

	date := monday
	_, err = store.Plannings.Create(ctx, planning.Planning{
		UserID:    u.ID,
		Date:      &date,
		StartTime: planning.DatedTime(date, 10, 0, time.UTC),
		EndTime:   planning.DatedTime(date, 18, 0, time.UTC),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		count, err = engine.LateCount(ctx, u.ID, monday, end)
		require.NoError(t, err)
		assert.Equal(t, 0, count, "on time against the 10:00 dated planning")
	}
}

// Test clocks on days without planning are never late
func TestEngine_LateCount_NoPlanningSkipped(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, "u@example.com", user.RoleEmployee)
	seedTemplate(t, store, u.ID, 0, 9, 17)
	saturday := monday.AddDate(0, 0, 5)
	seedClosedClock(store, u.ID, at(saturday, 13, 0), at(saturday, 15, 0))

	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	count, err := engine.LateCount(context.Background(), u.ID, monday, monday.AddDate(0, 0, 7))

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// Test hours sum closed clocks in range and custom metrics yield nil
func TestEngine_HoursAndCustom(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, "u@example.com", user.RoleEmployee)
	seedClosedClock(store, u.ID, at(monday, 9, 0), at(monday, 17, 0))
	tuesday := monday.AddDate(0, 0, 1)
	seedClosedClock(store, u.ID, at(tuesday, 9, 0), at(tuesday, 13, 30))
	store.Clocks.Seed(clock.Clock{UserID: u.ID, ClockIn: at(monday.AddDate(0, 0, 2), 9, 0)})
	// Outside the range.
	seedClosedClock(store, u.ID, at(monday.AddDate(0, 0, 10), 9, 0), at(monday.AddDate(0, 0, 10), 17, 0))

	engine := NewMetricsEngine(store.Clocks, store.Plannings, time.UTC)
	ctx := context.Background()
	end := monday.AddDate(0, 0, 7)

	hours, err := engine.HoursWorked(ctx, u.ID, monday, end)
	require.NoError(t, err)
	assert.Equal(t, 12.5, hours)

	days, err := engine.TotalDays(ctx, u.ID, monday, end)
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	custom, err := engine.ComputeMetric(ctx, u.ID, kpi.MetricCustom, monday, end)
	require.NoError(t, err)
	assert.Nil(t, custom)
}
