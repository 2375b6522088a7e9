package clock

import (
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

type ClockResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	ClockIn     string   `json:"clockIn"`
	ClockOut    *string  `json:"clockOut"`
	HoursWorked *float64 `json:"hoursWorked"`
	Late        bool     `json:"late"`
	EarlyLeave  bool     `json:"earlyLeave"`
	ShortDay    bool     `json:"shortDay"`
	CreatedAt   string   `json:"createdAt"`
}

func NewClockResponse(c Clock) ClockResponse {
	resp := ClockResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		ClockIn:     c.ClockIn.Format(time.RFC3339),
		HoursWorked: c.HoursWorked,
		Late:        c.Late,
		EarlyLeave:  c.EarlyLeave,
		ShortDay:    c.ShortDay,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
	if c.ClockOut != nil {
		out := c.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &out
	}
	return resp
}

// ClockInRequest opens a session. UserID defaults to the requester and
// ClockIn to the current time.
type ClockInRequest struct {
	UserID  *string `json:"userId,omitempty"`
	ClockIn *string `json:"clockIn,omitempty"`

	clockIn time.Time
}

func (r *ClockInRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs.Add("userId", "userId must be a valid UUID")
	}

	r.clockIn = now
	if r.ClockIn != nil {
		t, ok := validator.IsValidDateTime(*r.ClockIn)
		if !ok {
			errs.Add("clockIn", "clockIn must be an ISO8601 timestamp")
		} else {
			r.clockIn = t
		}
	}

	return errs.Err()
}

// Time returns the validated clock-in instant.
func (r *ClockInRequest) Time() time.Time { return r.clockIn }

type ClockOutRequest struct {
	ClockOut *string `json:"clockOut,omitempty"`

	clockOut time.Time
}

// Validate parses clockOut (defaulting to now) and checks it does not precede clockIn.
func (r *ClockOutRequest) Validate(clockIn, now time.Time) error {
	r.clockOut = now
	if r.ClockOut != nil {
		t, ok := validator.IsValidDateTime(*r.ClockOut)
		if !ok {
			return validator.Single("clockOut", "clockOut must be an ISO8601 timestamp")
		}
		r.clockOut = t
	}
	if r.clockOut.Before(clockIn) {
		return validator.Single("clockOut", "clockOut must not be before clockIn")
	}
	return nil
}

// Time returns the validated clock-out instant.
func (r *ClockOutRequest) Time() time.Time { return r.clockOut }

type ListClocksQuery struct {
	From *time.Time
	To   *time.Time
}
