package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
)

type PlanningRepository struct {
	s *Store
}

var _ planning.PlanningRepository = (*PlanningRepository)(nil)

func (r *PlanningRepository) Create(ctx context.Context, p planning.Planning) (planning.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.IsTemplate && r.hasTemplate(p.UserID, *p.DayOfWeek, "") {
		return planning.Planning{}, planning.ErrTemplateDayExists
	}
	return r.insert(p), nil
}

func (r *PlanningRepository) CreateTemplates(ctx context.Context, plans []planning.Planning) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range plans {
		if r.hasTemplate(p.UserID, *p.DayOfWeek, "") {
			continue
		}
		p.IsTemplate = true
		r.insert(p)
	}
	return nil
}

func (r *PlanningRepository) GetByID(ctx context.Context, id string) (planning.Planning, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plannings[id]
	if !ok {
		return planning.Planning{}, planning.ErrPlanningNotFound
	}
	return p, nil
}

func (r *PlanningRepository) Update(ctx context.Context, p planning.Planning) (planning.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.plannings[p.ID]
	if !ok {
		return planning.Planning{}, planning.ErrPlanningNotFound
	}
	if p.IsTemplate && r.hasTemplate(p.UserID, *p.DayOfWeek, p.ID) {
		return planning.Planning{}, planning.ErrTemplateDayExists
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.s.Now()
	r.s.plannings[p.ID] = p
	return p, nil
}

func (r *PlanningRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plannings[id]; !ok {
		return planning.ErrPlanningNotFound
	}
	delete(r.s.plannings, id)
	return nil
}

func (r *PlanningRepository) ListForUser(ctx context.Context, userID string) ([]planning.Planning, error) {
	return r.filter(func(p planning.Planning) bool { return p.UserID == userID }), nil
}

func (r *PlanningRepository) ListTemplates(ctx context.Context, userID string) ([]planning.Planning, error) {
	return r.filter(func(p planning.Planning) bool { return p.UserID == userID && p.IsTemplate }), nil
}

func (r *PlanningRepository) ListDated(ctx context.Context, userID string, from, to time.Time) ([]planning.Planning, error) {
	lo, hi := from.Format(planning.DateLayout), to.Format(planning.DateLayout)
	return r.filter(func(p planning.Planning) bool {
		if p.UserID != userID || p.IsTemplate || p.Date == nil {
			return false
		}
		day := planning.DateKey(*p.Date)
		return day >= lo && day <= hi
	}), nil
}

func (r *PlanningRepository) filter(keep func(planning.Planning) bool) []planning.Planning {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	plans := make([]planning.Planning, 0)
	for _, p := range r.s.plannings {
		if keep(p) {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.IsTemplate != b.IsTemplate {
			return !a.IsTemplate
		}
		if a.IsTemplate {
			return *a.DayOfWeek < *b.DayOfWeek
		}
		return a.StartTime.Before(b.StartTime)
	})
	return plans
}

// hasTemplate expects the store lock to be held.
func (r *PlanningRepository) hasTemplate(userID string, day int, exceptID string) bool {
	for _, p := range r.s.plannings {
		if p.ID != exceptID && p.UserID == userID && p.IsTemplate && p.DayOfWeek != nil && *p.DayOfWeek == day {
			return true
		}
	}
	return false
}

// insert expects the store lock to be held.
func (r *PlanningRepository) insert(p planning.Planning) planning.Planning {
	if p.ID == "" {
		p.ID = newID()
	}
	now := r.s.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.plannings[p.ID] = p
	return p
}
