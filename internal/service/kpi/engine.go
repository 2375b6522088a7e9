package kpi

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
)

// Engine recomputes metrics from stored clocks, re-deriving lateness against
// the plannings as they are now rather than trusting Clock.Late.
type Engine struct {
	clocks    clock.ClockRepository
	plannings planning.PlanningRepository
	loc       *time.Location
}

func NewMetricsEngine(clocks clock.ClockRepository, plannings planning.PlanningRepository, loc *time.Location) kpi.MetricsEngine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{clocks: clocks, plannings: plannings, loc: loc}
}

// ComputeMetric implements kpi.MetricsEngine.
func (e *Engine) ComputeMetric(ctx context.Context, userID string, metric kpi.Metric, start, end time.Time) (*float64, error) {
	var value float64
	switch metric {
	case kpi.MetricHours:
		hours, err := e.HoursWorked(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		value = hours
	case kpi.MetricLateness:
		late, err := e.LateCount(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		value = float64(late)
	default:
		return nil, nil
	}
	return &value, nil
}

// LateCount implements kpi.MetricsEngine.
func (e *Engine) LateCount(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, nil
	}

	clocks, err := e.clocks.ListInRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("list clocks: %w", err)
	}
	if len(clocks) == 0 {
		return 0, nil
	}

	plans, err := e.plannings.ListForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list plannings: %w", err)
	}

	late := 0
	for _, c := range clocks {
		plan := planning.Resolve(plans, c.ClockIn, e.loc)
		if plan == nil {
			continue
		}
		if c.ClockIn.After(plan.StartOn(c.ClockIn, e.loc).Add(planning.LatenessGrace)) {
			late++
		}
	}
	return late, nil
}

// HoursWorked implements kpi.MetricsEngine.
func (e *Engine) HoursWorked(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	if !end.After(start) {
		return 0, nil
	}
	total, err := e.clocks.SumHours(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}
	return math.Round(total*100) / 100, nil
}

// TotalDays implements kpi.MetricsEngine.
func (e *Engine) TotalDays(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, nil
	}
	count, err := e.clocks.CountInRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("count clocks: %w", err)
	}
	return count, nil
}
