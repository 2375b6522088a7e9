package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
)

type TeamRepository struct {
	s *Store

	// ScopeErr, when set, fails scope resolution to simulate an unavailable store.
	ScopeErr error
	// ScopeCalls counts ScopeUserIDs invocations.
	ScopeCalls int
}

var _ team.TeamRepository = (*TeamRepository)(nil)

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	now := r.s.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.teams[t.ID] = t
	return t, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[id]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	return t, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	teams := make([]team.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		teams = append(teams, t)
	}
	sortTeams(teams)
	return teams, nil
}

func (r *TeamRepository) ListForUser(ctx context.Context, userID string) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	teams := make([]team.Team, 0)
	for _, t := range r.s.teams {
		if t.ManagerID == userID || r.isMember(t.ID, userID) {
			teams = append(teams, t)
		}
	}
	sortTeams(teams)
	return teams, nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.teams[t.ID]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = r.s.Now()
	r.s.teams[t.ID] = t
	return t, nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	delete(r.s.teams, id)

	members := r.s.members[:0]
	for _, m := range r.s.members {
		if m.TeamID != id {
			members = append(members, m)
		}
	}
	r.s.members = members
	return nil
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) (team.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.isMember(teamID, userID) {
		return team.Membership{}, team.ErrMemberExists
	}
	m := team.Membership{TeamID: teamID, UserID: userID, CreatedAt: r.s.Now()}
	r.s.members = append(r.s.members, m)
	return m, nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, m := range r.s.members {
		if m.TeamID == teamID && m.UserID == userID {
			r.s.members = append(r.s.members[:i], r.s.members[i+1:]...)
			return nil
		}
	}
	return team.ErrMemberNotFound
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.isMember(teamID, userID), nil
}

func (r *TeamRepository) ListMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0)
	for _, m := range r.s.members {
		if m.TeamID == teamID {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (r *TeamRepository) ScopeUserIDs(ctx context.Context, managerID string) ([]string, error) {
	r.s.mu.Lock()
	r.ScopeCalls++
	r.s.mu.Unlock()
	if r.ScopeErr != nil {
		return nil, r.ScopeErr
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, t := range r.s.teams {
		if t.ManagerID != managerID && !r.isMember(t.ID, managerID) {
			continue
		}
		add(t.ManagerID)
		for _, m := range r.s.members {
			if m.TeamID == t.ID {
				add(m.UserID)
			}
		}
	}
	return ids, nil
}

func (r *TeamRepository) StrictScopeUserIDs(ctx context.Context, managerID string) ([]string, error) {
	if r.ScopeErr != nil {
		return nil, r.ScopeErr
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, m := range r.s.members {
		t, ok := r.s.teams[m.TeamID]
		if !ok || t.ManagerID != managerID {
			continue
		}
		if _, dup := seen[m.UserID]; !dup {
			seen[m.UserID] = struct{}{}
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

// isMember expects the store lock to be held.
func (r *TeamRepository) isMember(teamID, userID string) bool {
	for _, m := range r.s.members {
		if m.TeamID == teamID && m.UserID == userID {
			return true
		}
	}
	return false
}

func sortTeams(teams []team.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Name != teams[j].Name {
			return teams[i].Name < teams[j].Name
		}
		return teams[i].ID < teams[j].ID
	})
}
