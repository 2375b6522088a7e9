package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
)

type KPIRepository struct {
	s *Store
}

var _ kpi.KPIRepository = (*KPIRepository)(nil)

func (r *KPIRepository) Create(ctx context.Context, k kpi.KPI) (kpi.KPI, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if k.ID == "" {
		k.ID = newID()
	}
	k.CreatedAt = r.s.Now()
	r.s.kpis[k.ID] = k
	return k, nil
}

func (r *KPIRepository) GetByID(ctx context.Context, id string) (kpi.KPI, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.kpis[id]
	if !ok {
		return kpi.KPI{}, kpi.ErrKPINotFound
	}
	return k, nil
}

func (r *KPIRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.kpis[id]; !ok {
		return kpi.ErrKPINotFound
	}
	delete(r.s.kpis, id)
	return nil
}

func (r *KPIRepository) List(ctx context.Context) ([]kpi.KPI, error) {
	return r.filter(func(kpi.KPI) bool { return true }), nil
}

func (r *KPIRepository) ListForManager(ctx context.Context, managerID string, teamIDs, userIDs []string) ([]kpi.KPI, error) {
	teams := toSet(teamIDs)
	users := toSet(userIDs)
	return r.filter(func(k kpi.KPI) bool {
		if k.CreatedBy == managerID {
			return true
		}
		if k.Scope == kpi.ScopeTeam && k.TargetTeamID != nil {
			_, ok := teams[*k.TargetTeamID]
			return ok
		}
		if k.Scope == kpi.ScopeUser && k.TargetUserID != nil {
			_, ok := users[*k.TargetUserID]
			return ok
		}
		return false
	}), nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (r *KPIRepository) ListForUser(ctx context.Context, userID string) ([]kpi.KPI, error) {
	return r.filter(func(k kpi.KPI) bool {
		return k.Scope == kpi.ScopeUser && k.TargetUserID != nil && *k.TargetUserID == userID
	}), nil
}

func (r *KPIRepository) filter(keep func(kpi.KPI) bool) []kpi.KPI {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	kpis := make([]kpi.KPI, 0)
	for _, k := range r.s.kpis {
		if keep(k) {
			kpis = append(kpis, k)
		}
	}
	sort.Slice(kpis, func(i, j int) bool {
		if !kpis[i].CreatedAt.Equal(kpis[j].CreatedAt) {
			return kpis[i].CreatedAt.After(kpis[j].CreatedAt)
		}
		return kpis[i].ID < kpis[j].ID
	})
	return kpis
}
