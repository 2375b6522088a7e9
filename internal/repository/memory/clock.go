package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
)

type ClockRepository struct {
	s *Store

	// RangeCalls counts range queries issued by the metrics engine.
	RangeCalls int
}

var _ clock.ClockRepository = (*ClockRepository)(nil)

func (r *ClockRepository) Create(ctx context.Context, c clock.Clock) (clock.Clock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.clocks {
		if existing.UserID == c.UserID && existing.IsOpen() {
			return clock.Clock{}, clock.ErrOpenClockExists
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := r.s.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.clocks[c.ID] = c
	return c, nil
}

// Seed stores c as-is, bypassing the open clock check. Used to build fixtures.
func (r *ClockRepository) Seed(c clock.Clock) clock.Clock {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	r.s.clocks[c.ID] = c
	return c
}

func (r *ClockRepository) GetByID(ctx context.Context, id string) (clock.Clock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clocks[id]
	if !ok {
		return clock.Clock{}, clock.ErrClockNotFound
	}
	return c, nil
}

func (r *ClockRepository) HasOpenClock(ctx context.Context, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.clocks {
		if c.UserID == userID && c.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *ClockRepository) Close(ctx context.Context, c clock.Clock) (clock.Clock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.clocks[c.ID]
	if !ok || !current.IsOpen() {
		return clock.Clock{}, clock.ErrClockAlreadyClosed
	}
	current.ClockOut = c.ClockOut
	current.HoursWorked = c.HoursWorked
	current.Late = c.Late
	current.EarlyLeave = c.EarlyLeave
	current.ShortDay = c.ShortDay
	current.UpdatedAt = r.s.Now()
	r.s.clocks[c.ID] = current
	return current, nil
}

func (r *ClockRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clocks[id]; !ok {
		return clock.ErrClockNotFound
	}
	delete(r.s.clocks, id)
	return nil
}

func (r *ClockRepository) List(ctx context.Context, filter clock.ListFilter) ([]clock.Clock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var allowed map[string]struct{}
	if filter.UserIDs != nil {
		allowed = make(map[string]struct{}, len(filter.UserIDs))
		for _, id := range filter.UserIDs {
			allowed[id] = struct{}{}
		}
	}

	clocks := make([]clock.Clock, 0)
	for _, c := range r.s.clocks {
		if allowed != nil {
			if _, ok := allowed[c.UserID]; !ok {
				continue
			}
		}
		if filter.From != nil && c.ClockIn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && c.ClockIn.After(*filter.To) {
			continue
		}
		clocks = append(clocks, c)
	}
	sort.Slice(clocks, func(i, j int) bool {
		if !clocks[i].ClockIn.Equal(clocks[j].ClockIn) {
			return clocks[i].ClockIn.After(clocks[j].ClockIn)
		}
		return clocks[i].ID < clocks[j].ID
	})
	return clocks, nil
}

func (r *ClockRepository) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]clock.Clock, error) {
	r.s.mu.Lock()
	r.RangeCalls++
	r.s.mu.Unlock()

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.inRange(userID, start, end), nil
}

func (r *ClockRepository) SumHours(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	r.s.mu.Lock()
	r.RangeCalls++
	r.s.mu.Unlock()

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total float64
	for _, c := range r.inRange(userID, start, end) {
		if c.HoursWorked != nil {
			total += *c.HoursWorked
		}
	}
	return total, nil
}

func (r *ClockRepository) CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	r.s.mu.Lock()
	r.RangeCalls++
	r.s.mu.Unlock()

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.inRange(userID, start, end)), nil
}

// inRange expects the store lock to be held.
func (r *ClockRepository) inRange(userID string, start, end time.Time) []clock.Clock {
	clocks := make([]clock.Clock, 0)
	for _, c := range r.s.clocks {
		if c.UserID == userID && !c.ClockIn.Before(start) && !c.ClockIn.After(end) {
			clocks = append(clocks, c)
		}
	}
	sort.Slice(clocks, func(i, j int) bool { return clocks[i].ClockIn.Before(clocks[j].ClockIn) })
	return clocks
}
