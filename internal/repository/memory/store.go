// Package memory holds map-backed repositories with the same semantics as the
// PostgreSQL ones. Service and handler tests run against it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]user.User
	teams     map[string]team.Team
	members   []team.Membership
	clocks    map[string]clock.Clock
	plannings map[string]planning.Planning
	kpis      map[string]kpi.KPI

	Now func() time.Time

	Users     *UserRepository
	Teams     *TeamRepository
	Clocks    *ClockRepository
	Plannings *PlanningRepository
	KPIs      *KPIRepository
}

func NewStore() *Store {
	s := &Store{
		users:     make(map[string]user.User),
		teams:     make(map[string]team.Team),
		clocks:    make(map[string]clock.Clock),
		plannings: make(map[string]planning.Planning),
		kpis:      make(map[string]kpi.KPI),
		Now:       time.Now,
	}
	s.Users = &UserRepository{s: s}
	s.Teams = &TeamRepository{s: s}
	s.Clocks = &ClockRepository{s: s}
	s.Plannings = &PlanningRepository{s: s}
	s.KPIs = &KPIRepository{s: s}
	return s
}

// Transactor runs fn directly; the store has no rollback.
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string {
	return uuid.NewString()
}
