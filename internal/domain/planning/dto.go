package planning

import (
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

type PlanningResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	IsTemplate bool    `json:"isTemplate"`
	DayOfWeek  *int    `json:"dayOfWeek,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
}

func NewPlanningResponse(p Planning, loc *time.Location) PlanningResponse {
	resp := PlanningResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		IsTemplate: p.IsTemplate,
		DayOfWeek:  p.DayOfWeek,
		StartTime:  p.StartTime.In(loc).Format(TimeOfDayLayout),
		EndTime:    p.EndTime.In(loc).Format(TimeOfDayLayout),
	}
	if p.Date != nil {
		d := DateKey(*p.Date)
		resp.Date = &d
	}
	return resp
}

// CreatePlanningRequest creates a template (isTemplate + dayOfWeek) or a dated planning (date).
// Times are "HH:MM" in the application timezone.
type CreatePlanningRequest struct {
	UserID     string  `json:"userId"`
	IsTemplate bool    `json:"isTemplate"`
	DayOfWeek  *int    `json:"dayOfWeek,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
}

func (r *CreatePlanningRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("userId", "userId is required")
	} else if !validator.IsValidUUID(r.UserID) {
		errs.Add("userId", "userId must be a valid UUID")
	}

	if r.IsTemplate {
		if r.DayOfWeek == nil {
			errs.Add("dayOfWeek", "dayOfWeek is required for templates")
		} else if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			errs.Add("dayOfWeek", "dayOfWeek must be between 0 (Monday) and 6 (Sunday)")
		}
		if r.Date != nil {
			errs.Add("date", "templates must not carry a date")
		}
	} else {
		if r.Date == nil {
			errs.Add("date", "date is required for dated plannings")
		} else if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
		}
		if r.DayOfWeek != nil {
			errs.Add("dayOfWeek", "dated plannings must not carry a dayOfWeek")
		}
	}

	validateTimes(&errs, r.StartTime, r.EndTime)

	return errs.Err()
}

// Build converts the request into a Planning in loc. Call after Validate.
func (r *CreatePlanningRequest) Build(loc *time.Location) Planning {
	sh, sm, _ := validator.IsValidTimeOfDay(r.StartTime)
	eh, em, _ := validator.IsValidTimeOfDay(r.EndTime)

	p := Planning{UserID: r.UserID, IsTemplate: r.IsTemplate}
	if r.IsTemplate {
		day := *r.DayOfWeek
		p.DayOfWeek = &day
		p.StartTime = TemplateTime(sh, sm, loc)
		p.EndTime = TemplateTime(eh, em, loc)
		return p
	}

	date, _ := validator.IsValidDate(*r.Date)
	p.Date = &date
	p.StartTime = DatedTime(date, sh, sm, loc)
	p.EndTime = DatedTime(date, eh, em, loc)
	return p
}

type UpdatePlanningRequest struct {
	DayOfWeek *int    `json:"dayOfWeek,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
}

func (r *UpdatePlanningRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		errs.Add("dayOfWeek", "dayOfWeek must be between 0 (Monday) and 6 (Sunday)")
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
		}
	}
	if r.StartTime != nil {
		if _, _, ok := validator.IsValidTimeOfDay(*r.StartTime); !ok {
			errs.Add("startTime", "startTime must be HH:MM")
		}
	}
	if r.EndTime != nil {
		if _, _, ok := validator.IsValidTimeOfDay(*r.EndTime); !ok {
			errs.Add("endTime", "endTime must be HH:MM")
		}
	}

	return errs.Err()
}

// Apply merges the update into p, keeping its kind. Call after Validate.
func (r *UpdatePlanningRequest) Apply(p Planning, loc *time.Location) (Planning, error) {
	var errs validator.ValidationErrors

	if p.IsTemplate && r.Date != nil {
		errs.Add("date", "templates must not carry a date")
	}
	if !p.IsTemplate && r.DayOfWeek != nil {
		errs.Add("dayOfWeek", "dated plannings must not carry a dayOfWeek")
	}
	if err := errs.Err(); err != nil {
		return Planning{}, err
	}

	start := p.StartTime.In(loc).Format(TimeOfDayLayout)
	end := p.EndTime.In(loc).Format(TimeOfDayLayout)
	if r.StartTime != nil {
		start = *r.StartTime
	}
	if r.EndTime != nil {
		end = *r.EndTime
	}
	validateTimes(&errs, start, end)
	if err := errs.Err(); err != nil {
		return Planning{}, err
	}

	sh, sm, _ := validator.IsValidTimeOfDay(start)
	eh, em, _ := validator.IsValidTimeOfDay(end)

	if p.IsTemplate {
		if r.DayOfWeek != nil {
			day := *r.DayOfWeek
			p.DayOfWeek = &day
		}
		p.StartTime = TemplateTime(sh, sm, loc)
		p.EndTime = TemplateTime(eh, em, loc)
		return p, nil
	}

	date := *p.Date
	if r.Date != nil {
		date, _ = validator.IsValidDate(*r.Date)
		p.Date = &date
	}
	p.StartTime = DatedTime(date, sh, sm, loc)
	p.EndTime = DatedTime(date, eh, em, loc)
	return p, nil
}

func validateTimes(errs *validator.ValidationErrors, start, end string) {
	sh, sm, okStart := validator.IsValidTimeOfDay(start)
	eh, em, okEnd := validator.IsValidTimeOfDay(end)
	if !okStart {
		errs.Add("startTime", "startTime must be HH:MM")
	}
	if !okEnd {
		errs.Add("endTime", "endTime must be HH:MM")
	}
	if okStart && okEnd && eh*60+em <= sh*60+sm {
		errs.Add("endTime", "endTime must be after startTime")
	}
}

type ListDatedQuery struct {
	UserID string
	From   time.Time
	To     time.Time
}
