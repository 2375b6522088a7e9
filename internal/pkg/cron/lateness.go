package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
)

const LatenessReconcileJob = "reconcile_lateness_counters"

// LatenessJobs rebuilds the monthly lateness counters from the clock table,
// repairing any increments lost when a clock-out's counter update failed.
type LatenessJobs struct {
	userRepo user.UserRepository
	loc      *time.Location
	now      func() time.Time
}

func NewLatenessJobs(userRepo user.UserRepository, loc *time.Location) *LatenessJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &LatenessJobs{userRepo: userRepo, loc: loc, now: time.Now}
}

func (j *LatenessJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(LatenessReconcileJob, interval, j.ReconcileCurrentMonth)
}

// ReconcileCurrentMonth recounts late closed clocks whose clock-in falls in the current calendar month.
func (j *LatenessJobs) ReconcileCurrentMonth(ctx context.Context) error {
	now := j.now().In(j.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, j.loc)
	to := from.AddDate(0, 1, 0)
	monthKey := user.MonthKey(now, j.loc)

	changed, err := j.userRepo.ReconcileLateness(ctx, monthKey, from, to)
	if err != nil {
		return fmt.Errorf("reconcile lateness for %s: %w", monthKey, err)
	}

	metrics.AddLatenessReconciled(changed)
	if changed > 0 {
		slog.Info("Cron: lateness counters reconciled", "month", monthKey, "updated", changed)
	}
	return nil
}
