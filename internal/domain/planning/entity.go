package planning

import "time"

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"

	// LatenessGrace is tolerated after the planned start before a clock-in counts as late.
	LatenessGrace = 5 * time.Minute
)

// Planning is either a weekly template (IsTemplate, DayOfWeek set, times on
// the epoch date) or a dated exception (Date set, full timestamps).
type Planning struct {
	ID         string
	UserID     string
	IsTemplate bool
	DayOfWeek  *int
	Date       *time.Time
	StartTime  time.Time
	EndTime    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Weekday returns the day of week of t in loc with Monday=0 .. Sunday=6.
func Weekday(t time.Time, loc *time.Location) int {
	return (int(t.In(loc).Weekday()) + 6) % 7
}

// DateKey formats a calendar date column value. DATE columns carry their
// calendar fields in whatever location they were decoded with.
func DateKey(d time.Time) string {
	return d.Format(DateLayout)
}

// Resolve picks the planning that applies on the calendar day of t: a dated
// planning for that exact date wins over the template for that weekday.
func Resolve(plans []Planning, t time.Time, loc *time.Location) *Planning {
	day := t.In(loc).Format(DateLayout)
	weekday := Weekday(t, loc)

	var template *Planning
	for i := range plans {
		p := &plans[i]
		if !p.IsTemplate {
			if p.Date != nil && DateKey(*p.Date) == day {
				return p
			}
			continue
		}
		if template == nil && p.DayOfWeek != nil && *p.DayOfWeek == weekday {
			template = p
		}
	}
	return template
}

// StartOn projects the planned start time-of-day onto the calendar day of t.
func (p Planning) StartOn(t time.Time, loc *time.Location) time.Time {
	return onDay(p.StartTime, t, loc)
}

// EndOn projects the planned end time-of-day onto the calendar day of t.
func (p Planning) EndOn(t time.Time, loc *time.Location) time.Time {
	return onDay(p.EndTime, t, loc)
}

func onDay(clock, day time.Time, loc *time.Location) time.Time {
	c := clock.In(loc)
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

// TemplateTime stores a time-of-day on the epoch date in loc.
func TemplateTime(hour, minute int, loc *time.Location) time.Time {
	return time.Date(1970, 1, 1, hour, minute, 0, 0, loc)
}

// DatedTime builds a full timestamp for a calendar date in loc.
func DatedTime(date time.Time, hour, minute int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

// DefaultTemplates is the Monday to Friday 09:00-17:00 week created for users without templates.
func DefaultTemplates(userID string, loc *time.Location) []Planning {
	plans := make([]Planning, 0, 5)
	for day := 0; day < 5; day++ {
		d := day
		plans = append(plans, Planning{
			UserID:     userID,
			IsTemplate: true,
			DayOfWeek:  &d,
			StartTime:  TemplateTime(9, 0, loc),
			EndTime:    TemplateTime(17, 0, loc),
		})
	}
	return plans
}
