package user

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	users     user.UserRepository
	evaluator access.Evaluator
}

func NewUserService(userRepository user.UserRepository, evaluator access.Evaluator) user.UserService {
	return &UserServiceImpl{
		users:     userRepository,
		evaluator: evaluator,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, requester user.Identity, req user.CreateUserRequest) (user.UserResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionUserCreate) {
		return user.UserResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return user.UserResponse{}, user.ErrUserEmailExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("generate user id: %w", err)
	}

	created, err := s.users.Create(ctx, user.User{
		ID:           id.String(),
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role(),
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(created), nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, requester user.Identity, id string) (user.UserResponse, error) {
	if err := s.evaluator.Authorize(ctx, requester, id); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, requester user.Identity) ([]user.UserResponse, error) {
	var (
		users []user.User
		err   error
	)

	switch requester.Role {
	case user.RoleAdmin:
		users, err = s.users.List(ctx)
	case user.RoleManager:
		scope, scopeErr := s.evaluator.Resolver().ResolveManagerScope(ctx, requester.UserID)
		if scopeErr != nil {
			return nil, scopeErr
		}
		users, err = s.users.ListByIDs(ctx, keys(scope))
	default:
		users, err = s.users.ListByIDs(ctx, []string{requester.UserID})
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return responses(users), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, requester user.Identity, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.evaluator.Authorize(ctx, requester, id); err != nil {
		return user.UserResponse{}, err
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := checkEdit(requester, target, req.Role()); err != nil {
		return user.UserResponse{}, err
	}

	if req.Firstname != nil {
		target.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		target.Lastname = *req.Lastname
	}
	if req.Email != nil {
		target.Email = *req.Email
	}
	if req.Phone != nil {
		target.Phone = req.Phone
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return user.UserResponse{}, err
		}
		target.PasswordHash = hash
	}
	if role := req.Role(); role != nil {
		target.Role = *role
	}

	updated, err := s.users.Update(ctx, target)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(updated), nil
}

// checkEdit applies the role rules on top of record access:
// admins edit anyone, everyone else keeps their own role, and managers
// may only edit employees without promoting them to admin.
func checkEdit(requester user.Identity, target user.User, newRole *user.Role) error {
	if requester.IsAdmin() {
		return nil
	}
	if requester.UserID == target.ID {
		if newRole != nil && *newRole != target.Role {
			return user.ErrCannotChangeOwnRole
		}
		return nil
	}
	if target.Role != user.RoleEmployee {
		return user.ErrCannotEditPrivileged
	}
	if newRole != nil && *newRole == user.RoleAdmin {
		return user.ErrCannotPromoteToAdmin
	}
	return nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, requester user.Identity, id string) error {
	if !user.HasPermission(requester.Role, user.PermissionUserDelete) {
		return user.ErrAdminPrivilegeRequired
	}
	if requester.UserID == id {
		return user.ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.evaluator.Resolver().InvalidateScopes(ctx)
	return nil
}

// DirectReports implements user.UserService.
func (s *UserServiceImpl) DirectReports(ctx context.Context, requester user.Identity) ([]user.UserResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionUserViewReports) {
		return nil, user.ErrManagerAccessRequired
	}

	scope, err := s.evaluator.Resolver().ResolveStrictManagerScope(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}
	delete(scope, requester.UserID)

	users, err := s.users.ListByIDs(ctx, keys(scope))
	if err != nil {
		return nil, fmt.Errorf("list direct reports: %w", err)
	}
	return responses(users), nil
}

func keys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func responses(users []user.User) []user.UserResponse {
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.NewUserResponse(u))
	}
	return out
}
