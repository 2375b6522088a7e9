package kpi

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

// MetricsEngine derives attendance metrics from clocks and plannings.
type MetricsEngine interface {
	// ComputeMetric returns nil for MetricCustom.
	ComputeMetric(ctx context.Context, userID string, metric Metric, start, end time.Time) (*float64, error)
	LateCount(ctx context.Context, userID string, start, end time.Time) (int, error)
	HoursWorked(ctx context.Context, userID string, start, end time.Time) (float64, error)
	TotalDays(ctx context.Context, userID string, start, end time.Time) (int, error)
}

type KPIService interface {
	Create(ctx context.Context, requester user.Identity, req CreateKPIRequest) (KPIResponse, error)
	Get(ctx context.Context, requester user.Identity, id string) (KPIResponse, error)
	List(ctx context.Context, requester user.Identity) ([]KPIResponse, error)
	Delete(ctx context.Context, requester user.Identity, id string) error
	Results(ctx context.Context, requester user.Identity, id string, q RangeQuery) (ResultsResponse, error)
	Compute(ctx context.Context, requester user.Identity, req ComputeRequest) (ComputeResponse, error)
	// ComputeForScope builds per-user payloads without access checks.
	ComputeForScope(ctx context.Context, scope Scope, targetID string, start, end time.Time) ([]UserResult, error)
}
