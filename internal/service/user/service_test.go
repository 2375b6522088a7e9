package user

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/memory"
	accesssvc "github.com/cmlabs-hris/timetrack-backend-go/internal/service/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	store   *memory.Store
	service user.UserService

	admin, manager, peerManager, worker, outsider user.User
}

// The manager runs one team with worker and peerManager; peerManager runs an empty team.
func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	mk := func(email string, role user.Role) user.User {
		u, err := store.Users.Create(ctx, user.User{Firstname: email, Lastname: "Test", Email: email, Role: role})
		require.NoError(t, err)
		return u
	}
	f := &userFixture{store: store}
	f.admin = mk("admin@example.com", user.RoleAdmin)
	f.manager = mk("manager@example.com", user.RoleManager)
	f.peerManager = mk("peer@example.com", user.RoleManager)
	f.worker = mk("worker@example.com", user.RoleEmployee)
	f.outsider = mk("outsider@example.com", user.RoleEmployee)

	tm, err := store.Teams.Create(ctx, team.Team{Name: "Core", ManagerID: f.manager.ID})
	require.NoError(t, err)
	for _, id := range []string{f.worker.ID, f.peerManager.ID} {
		_, err := store.Teams.AddMember(ctx, tm.ID, id)
		require.NoError(t, err)
	}
	_, err = store.Teams.Create(ctx, team.Team{Name: "Empty", ManagerID: f.peerManager.ID})
	require.NoError(t, err)

	evaluator := accesssvc.NewEvaluator(store.Teams, accesssvc.NewResolver(store.Teams, nil))
	f.service = NewUserService(store.Users, evaluator)
	return f
}

func who(u user.User) user.Identity {
	return user.Identity{UserID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

// Test user creation hashes the password and rejects duplicates
func TestUserService_Create(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	req := user.CreateUserRequest{
		Firstname: "Nina",
		Lastname:  "Hart",
		Email:     "Nina@Example.com",
		Password:  "correct-horse",
		Profile:   "Manager",
	}

	created, err := f.service.Create(ctx, who(f.admin), req)
	require.NoError(t, err)
	assert.Equal(t, "nina@example.com", created.Email)
	assert.Equal(t, "manager", created.Profile)

	stored, err := f.store.Users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))

	_, err = f.service.Create(ctx, who(f.admin), req)
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	req.Email = "other@example.com"
	req.Profile = "owner"
	_, err = f.service.Create(ctx, who(f.admin), req)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.service.Create(ctx, who(f.manager), req)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

// Test profile reads follow access scope
func TestUserService_Get(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.service.Get(ctx, who(f.manager), f.worker.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(ctx, who(f.manager), f.outsider.ID)
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Get(ctx, who(f.worker), f.manager.ID)
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.service.Get(ctx, who(f.admin), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// Test role edit rules
func TestUserService_Update_RoleRules(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.service.Update(ctx, who(f.worker), f.worker.ID, user.UpdateUserRequest{Profile: ptr("admin")})
	assert.ErrorIs(t, err, user.ErrCannotChangeOwnRole)

	_, err = f.service.Update(ctx, who(f.manager), f.worker.ID, user.UpdateUserRequest{Profile: ptr("admin")})
	assert.ErrorIs(t, err, user.ErrCannotPromoteToAdmin)

	_, err = f.service.Update(ctx, who(f.manager), f.peerManager.ID, user.UpdateUserRequest{Firstname: ptr("Peer")})
	assert.ErrorIs(t, err, user.ErrCannotEditPrivileged)

	updated, err := f.service.Update(ctx, who(f.manager), f.worker.ID, user.UpdateUserRequest{Firstname: ptr("Wendy")})
	require.NoError(t, err)
	assert.Equal(t, "Wendy", updated.Firstname)

	promoted, err := f.service.Update(ctx, who(f.admin), f.worker.ID, user.UpdateUserRequest{Profile: ptr("manager")})
	require.NoError(t, err)
	assert.Equal(t, "manager", promoted.Profile)
}

// Test list and direct reports per role
func TestUserService_ListAndDirectReports(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	all, err := f.service.List(ctx, who(f.admin))
	require.NoError(t, err)
	assert.Len(t, all, 5)

	self, err := f.service.List(ctx, who(f.worker))
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, f.worker.ID, self[0].ID)

	// peerManager belongs to Core, so the broad scope reaches Core's people.
	visible, err := f.service.List(ctx, who(f.peerManager))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.manager.ID, f.peerManager.ID, f.worker.ID}, userIDs(visible))

	// Direct reports only follow declared management.
	reports, err := f.service.DirectReports(ctx, who(f.peerManager))
	require.NoError(t, err)
	assert.Empty(t, reports)

	reports, err = f.service.DirectReports(ctx, who(f.manager))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.worker.ID, f.peerManager.ID}, userIDs(reports))

	_, err = f.service.DirectReports(ctx, who(f.worker))
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}

// Test delete rules
func TestUserService_Delete(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.Delete(ctx, who(f.admin), f.admin.ID), user.ErrCannotDeleteSelf)
	assert.ErrorIs(t, f.service.Delete(ctx, who(f.manager), f.worker.ID), user.ErrAdminPrivilegeRequired)
	assert.ErrorIs(t, f.service.Delete(ctx, who(f.admin), f.manager.ID), user.ErrUserManagesTeam)
	require.NoError(t, f.service.Delete(ctx, who(f.admin), f.worker.ID))
	assert.ErrorIs(t, f.service.Delete(ctx, who(f.admin), f.worker.ID), user.ErrUserNotFound)
}

func userIDs(users []user.UserResponse) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
