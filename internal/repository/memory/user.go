package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

type UserRepository struct {
	s *Store

	// ApplyLatenessErr, when set, fails every ApplyLateness call.
	ApplyLatenessErr error
}

var _ user.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	now := r.s.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.LatenessCount = current.LatenessCount
	u.LatenessMonth = current.LatenessMonth
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = r.s.Now()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrUserNotFound
	}
	for _, t := range r.s.teams {
		if t.ManagerID == id {
			return user.ErrUserManagesTeam
		}
	}
	delete(r.s.users, id)

	members := r.s.members[:0]
	for _, m := range r.s.members {
		if m.UserID != id {
			members = append(members, m)
		}
	}
	r.s.members = members
	for cid, c := range r.s.clocks {
		if c.UserID == id {
			delete(r.s.clocks, cid)
		}
	}
	return nil
}

func (r *UserRepository) ApplyLateness(ctx context.Context, userID, monthKey string, late bool) error {
	if r.ApplyLatenessErr != nil {
		return r.ApplyLatenessErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	count, month := user.NextLatenessCounter(u.LatenessMonth, u.LatenessCount, monthKey, late)
	u.LatenessCount = count
	u.LatenessMonth = &month
	r.s.users[userID] = u
	return nil
}

func (r *UserRepository) ReconcileLateness(ctx context.Context, monthKey string, from, to time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	late := make(map[string]int)
	for _, c := range r.s.clocks {
		if c.Late && c.ClockOut != nil && !c.ClockIn.Before(from) && c.ClockIn.Before(to) {
			late[c.UserID]++
		}
	}

	var changed int64
	for id, u := range r.s.users {
		count := late[id]
		if u.LatenessMonth != nil && *u.LatenessMonth == monthKey && u.LatenessCount == count {
			continue
		}
		month := monthKey
		u.LatenessMonth = &month
		u.LatenessCount = count
		r.s.users[id] = u
		changed++
	}
	return changed, nil
}

func sortUsers(users []user.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].Lastname != users[j].Lastname {
			return users[i].Lastname < users[j].Lastname
		}
		if users[i].Firstname != users[j].Firstname {
			return users[i].Firstname < users[j].Firstname
		}
		return users[i].ID < users[j].ID
	})
}
