package clock

import (
	"math"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
)

// ShortDayHours is the threshold under which a closed session is a short day.
const ShortDayHours = 8.0

// Clock is one attendance session. It is open until ClockOut is set; the
// derived fields are written once, at clock-out.
type Clock struct {
	ID          string
	UserID      string
	ClockIn     time.Time
	ClockOut    *time.Time
	HoursWorked *float64
	Late        bool
	EarlyLeave  bool
	ShortDay    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Clock) IsOpen() bool {
	return c.ClockOut == nil
}

// Derived holds the attendance flags computed when a session closes.
type Derived struct {
	HoursWorked float64
	Late        bool
	EarlyLeave  bool
	ShortDay    bool
}

// HoursBetween returns the elapsed hours rounded to two decimals.
func HoursBetween(in, out time.Time) float64 {
	return math.Round(out.Sub(in).Hours()*100) / 100
}

// Derive computes the clock-out flags against the applicable planning.
// Without a planning the session is neither late nor an early leave.
func Derive(in, out time.Time, plan *planning.Planning, loc *time.Location) Derived {
	d := Derived{HoursWorked: HoursBetween(in, out)}
	d.ShortDay = d.HoursWorked < ShortDayHours
	if plan != nil {
		d.Late = in.After(plan.StartOn(in, loc))
		d.EarlyLeave = out.Before(plan.EndOn(in, loc))
	}
	return d
}

// Close applies out and the derived fields to c.
func (c *Clock) Close(out time.Time, d Derived) {
	c.ClockOut = &out
	hours := d.HoursWorked
	c.HoursWorked = &hours
	c.Late = d.Late
	c.EarlyLeave = d.EarlyLeave
	c.ShortDay = d.ShortDay
}
