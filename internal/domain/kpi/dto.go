package kpi

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

type KPIResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Metric       Metric          `json:"metric"`
	Scope        Scope           `json:"scope"`
	TargetUserID *string         `json:"targetUserId,omitempty"`
	TargetTeamID *string         `json:"targetTeamId,omitempty"`
	Params       json.RawMessage `json:"params,omitempty"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    string          `json:"createdAt"`
}

func NewKPIResponse(k KPI) KPIResponse {
	return KPIResponse{
		ID:           k.ID,
		Name:         k.Name,
		Description:  k.Description,
		Metric:       k.Metric,
		Scope:        k.Scope,
		TargetUserID: k.TargetUserID,
		TargetTeamID: k.TargetTeamID,
		Params:       k.Params,
		CreatedBy:    k.CreatedBy,
		CreatedAt:    k.CreatedAt.Format(time.RFC3339),
	}
}

type CreateKPIRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Metric       string          `json:"metric"`
	Scope        string          `json:"scope"`
	TargetUserID *string         `json:"targetUserId,omitempty"`
	TargetTeamID *string         `json:"targetTeamId,omitempty"`
	Params       json.RawMessage `json:"params,omitempty"`

	metric Metric
	scope  Scope
}

func (r *CreateKPIRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 150 {
		errs.Add("name", "name must be at most 150 characters")
	}

	if m, err := ParseMetric(r.Metric); err != nil {
		errs.Add("metric", "metric must be one of lateness, hours, custom")
	} else {
		r.metric = m
	}

	if s, err := ParseScope(r.Scope); err != nil {
		errs.Add("scope", "scope must be one of user, team")
	} else {
		r.scope = s
		validateTarget(&errs, s, r.TargetUserID, r.TargetTeamID, true)
	}

	if len(r.Params) > 0 && !json.Valid(r.Params) {
		errs.Add("params", "params must be valid JSON")
	}

	return errs.Err()
}

// Build returns the KPI to persist. Call after Validate.
func (r *CreateKPIRequest) Build(createdBy string) KPI {
	k := KPI{
		Name:        r.Name,
		Description: r.Description,
		Metric:      r.metric,
		Scope:       r.scope,
		Params:      r.Params,
		CreatedBy:   createdBy,
	}
	if r.scope == ScopeTeam {
		k.TargetTeamID = r.TargetTeamID
	} else {
		k.TargetUserID = r.TargetUserID
	}
	return k
}

func validateTarget(errs *validator.ValidationErrors, scope Scope, userID, teamID *string, userRequired bool) {
	switch scope {
	case ScopeUser:
		if userID == nil {
			if userRequired {
				errs.Add("targetUserId", "targetUserId is required for user scope")
			}
		} else if !validator.IsValidUUID(*userID) {
			errs.Add("targetUserId", "targetUserId must be a valid UUID")
		}
	case ScopeTeam:
		if teamID == nil {
			errs.Add("targetTeamId", "targetTeamId is required for team scope")
		} else if !validator.IsValidUUID(*teamID) {
			errs.Add("targetTeamId", "targetTeamId must be a valid UUID")
		}
	}
}

// RangeQuery carries optional start/end bounds as RFC3339 or YYYY-MM-DD.
type RangeQuery struct {
	Start *string
	End   *string
}

// Resolve parses the bounds in loc. The default window ends at now and spans DefaultWindow.
func (q RangeQuery) Resolve(now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	end := now
	if q.End != nil {
		t, ok := validator.ParseRangeBound(*q.End, loc, true)
		if !ok {
			errs.Add("end", "end must be an ISO8601 timestamp or YYYY-MM-DD")
		}
		end = t
	}

	start := end.Add(-DefaultWindow)
	if q.Start != nil {
		t, ok := validator.ParseRangeBound(*q.Start, loc, false)
		if !ok {
			errs.Add("start", "start must be an ISO8601 timestamp or YYYY-MM-DD")
		}
		start = t
	}

	if err := errs.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, validator.Single("end", "end must not be before start")
	}
	return start, end, nil
}

type ComputeRequest struct {
	Scope        string  `json:"scope"`
	TargetUserID *string `json:"targetUserId,omitempty"`
	TargetTeamID *string `json:"targetTeamId,omitempty"`
	Start        *string `json:"start,omitempty"`
	End          *string `json:"end,omitempty"`

	scope Scope
}

// Validate checks the scope and target; a missing user target means the requester.
func (r *ComputeRequest) Validate() error {
	var errs validator.ValidationErrors

	s, err := ParseScope(r.Scope)
	if err != nil {
		errs.Add("scope", "scope must be one of user, team")
	} else {
		r.scope = s
		validateTarget(&errs, s, r.TargetUserID, r.TargetTeamID, false)
	}

	return errs.Err()
}

func (r *ComputeRequest) ParsedScope() Scope { return r.scope }

func (r *ComputeRequest) Range() RangeQuery {
	return RangeQuery{Start: r.Start, End: r.End}
}

type LatenessStats struct {
	LateCount  int `json:"lateCount"`
	TotalDays  int `json:"totalDays"`
	OnTimeDays int `json:"onTimeDays"`
}

type HoursStats struct {
	Total     float64 `json:"total"`
	TotalDays int     `json:"totalDays"`
}

// UserResult is the per-user payload shared by persisted and ad-hoc computation.
type UserResult struct {
	User     user.Summary  `json:"user"`
	Lateness LatenessStats `json:"lateness"`
	Hours    HoursStats    `json:"hours"`
}

// Value selects the figure tracked by metric; nil for custom metrics.
func (r UserResult) Value(metric Metric) *float64 {
	var v float64
	switch metric {
	case MetricLateness:
		v = float64(r.Lateness.LateCount)
	case MetricHours:
		v = r.Hours.Total
	default:
		return nil
	}
	return &v
}

type ResultEntry struct {
	UserResult
	Value *float64 `json:"value"`
}

type ResultsResponse struct {
	KPIID   string        `json:"kpiId"`
	Name    string        `json:"name"`
	Metric  Metric        `json:"metric"`
	Scope   Scope         `json:"scope"`
	Start   string        `json:"start"`
	End     string        `json:"end"`
	Results []ResultEntry `json:"results"`
}

// ComputeResponse is the ad-hoc payload: user fields for user scope, TeamResults for team scope.
type ComputeResponse struct {
	Start       string         `json:"start"`
	End         string         `json:"end"`
	User        *user.Summary  `json:"user,omitempty"`
	Lateness    *LatenessStats `json:"lateness,omitempty"`
	Hours       *HoursStats    `json:"hours,omitempty"`
	TeamResults []UserResult   `json:"teamResults,omitempty"`
}
