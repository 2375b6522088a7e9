package clock

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/stretchr/testify/assert"
)

func TestHoursBetween(t *testing.T) {
	in := time.Date(2026, 1, 5, 9, 7, 0, 0, time.UTC)

	assert.Equal(t, 7.92, HoursBetween(in, time.Date(2026, 1, 5, 17, 2, 0, 0, time.UTC)))
	assert.Equal(t, 8.0, HoursBetween(in, in.Add(8*time.Hour)))
	assert.Equal(t, 0.0, HoursBetween(in, in))
	assert.Equal(t, 0.01, HoursBetween(in, in.Add(30*time.Second)))
}

func TestDerive_LateMondayShortDay(t *testing.T) {
	loc := time.UTC
	monday := 0
	plan := &planning.Planning{
		IsTemplate: true,
		DayOfWeek:  &monday,
		StartTime:  planning.TemplateTime(9, 0, loc),
		EndTime:    planning.TemplateTime(17, 0, loc),
	}
	in := time.Date(2026, 1, 5, 9, 7, 0, 0, loc)
	out := time.Date(2026, 1, 5, 17, 2, 0, 0, loc)

	d := Derive(in, out, plan, loc)

	assert.True(t, d.Late)
	assert.False(t, d.EarlyLeave)
	assert.Equal(t, 7.92, d.HoursWorked)
	assert.True(t, d.ShortDay)
}

func TestDerive_NoPlanning(t *testing.T) {
	in := time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)

	d := Derive(in, out, nil, time.UTC)

	assert.False(t, d.Late)
	assert.False(t, d.EarlyLeave)
	assert.False(t, d.ShortDay)
	assert.Equal(t, 9.0, d.HoursWorked)
}

func TestDerive_EarlyLeave(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 1, 6, 0, 0, 0, 0, loc)
	plan := &planning.Planning{Date: &date, StartTime: planning.DatedTime(date, 8, 0, loc), EndTime: planning.DatedTime(date, 16, 0, loc)}

	d := Derive(time.Date(2026, 1, 6, 8, 0, 0, 0, loc), time.Date(2026, 1, 6, 15, 30, 0, 0, loc), plan, loc)

	assert.False(t, d.Late)
	assert.True(t, d.EarlyLeave)
	assert.Equal(t, 7.5, d.HoursWorked)
}

func TestClockOutRequest_Validate(t *testing.T) {
	in := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	now := in.Add(8 * time.Hour)

	req := ClockOutRequest{}
	assert.NoError(t, req.Validate(in, now))
	assert.Equal(t, now, req.Time())

	bad := "tomorrow"
	req = ClockOutRequest{ClockOut: &bad}
	assert.Error(t, req.Validate(in, now))

	before := "2026-01-05T08:00:00Z"
	req = ClockOutRequest{ClockOut: &before}
	assert.Error(t, req.Validate(in, now))
}
