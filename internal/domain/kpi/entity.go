package kpi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Metric string

const (
	MetricLateness Metric = "lateness"
	MetricHours    Metric = "hours"
	MetricCustom   Metric = "custom"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricLateness:
		return MetricLateness, nil
	case MetricHours:
		return MetricHours, nil
	case MetricCustom:
		return MetricCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

type Scope string

const (
	ScopeUser Scope = "user"
	ScopeTeam Scope = "team"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeUser:
		return ScopeUser, nil
	case ScopeTeam:
		return ScopeTeam, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// KPI is a persisted metric definition. It is never mutated after creation.
type KPI struct {
	ID           string
	Name         string
	Description  *string
	Metric       Metric
	Scope        Scope
	TargetUserID *string
	TargetTeamID *string
	Params       json.RawMessage
	CreatedBy    string
	CreatedAt    time.Time
}

// TargetID returns the user or team the KPI is computed for.
func (k KPI) TargetID() string {
	if k.Scope == ScopeTeam && k.TargetTeamID != nil {
		return *k.TargetTeamID
	}
	if k.TargetUserID != nil {
		return *k.TargetUserID
	}
	return ""
}

// DefaultWindow is the persisted KPI range when none is requested.
const DefaultWindow = 30 * 24 * time.Hour
