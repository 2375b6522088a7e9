package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestWeekday(t *testing.T) {
	monday := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, Weekday(monday, time.UTC))
	assert.Equal(t, 6, Weekday(sunday, time.UTC))

	// Sunday 23:30 UTC is already Monday one hour east
	late := time.Date(2026, 1, 11, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 0, Weekday(late, time.FixedZone("CET", 3600)))
}

func TestResolve_DatedOverridesTemplate(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	plans := []Planning{
		{ID: "tpl-mon", IsTemplate: true, DayOfWeek: intPtr(0), StartTime: TemplateTime(9, 0, loc), EndTime: TemplateTime(17, 0, loc)},
		{ID: "dated", Date: &date, StartTime: DatedTime(date, 10, 0, loc), EndTime: DatedTime(date, 18, 0, loc)},
	}

	clockIn := time.Date(2026, 1, 5, 9, 30, 0, 0, loc)
	got := Resolve(plans, clockIn, loc)
	require.NotNil(t, got)
	assert.Equal(t, "dated", got.ID)

	// Idempotent
	assert.Equal(t, got.ID, Resolve(plans, clockIn, loc).ID)

	nextMonday := clockIn.AddDate(0, 0, 7)
	got = Resolve(plans, nextMonday, loc)
	require.NotNil(t, got)
	assert.Equal(t, "tpl-mon", got.ID)

	tuesday := clockIn.AddDate(0, 0, 1)
	assert.Nil(t, Resolve(plans, tuesday, loc))
}

func TestPlanning_StartOnEndOn(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	p := Planning{IsTemplate: true, DayOfWeek: intPtr(0), StartTime: TemplateTime(9, 0, loc), EndTime: TemplateTime(17, 30, loc)}
	day := time.Date(2026, 1, 5, 8, 7, 0, 0, time.UTC) // 09:07 CET

	assert.True(t, p.StartOn(day, loc).Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, loc)))
	assert.True(t, p.EndOn(day, loc).Equal(time.Date(2026, 1, 5, 17, 30, 0, 0, loc)))
}

func TestDefaultTemplates(t *testing.T) {
	plans := DefaultTemplates("u1", time.UTC)
	require.Len(t, plans, 5)
	for i, p := range plans {
		assert.True(t, p.IsTemplate)
		assert.Equal(t, i, *p.DayOfWeek)
		assert.Equal(t, "u1", p.UserID)
		assert.Equal(t, "09:00", p.StartTime.Format(TimeOfDayLayout))
		assert.Equal(t, "17:00", p.EndTime.Format(TimeOfDayLayout))
		assert.Nil(t, p.Date)
	}
}
