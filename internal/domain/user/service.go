package user

import "context"

type UserService interface {
	Create(ctx context.Context, requester Identity, req CreateUserRequest) (UserResponse, error)
	Get(ctx context.Context, requester Identity, id string) (UserResponse, error)
	List(ctx context.Context, requester Identity) ([]UserResponse, error)
	Update(ctx context.Context, requester Identity, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, requester Identity, id string) error
	// DirectReports lists users in teams the requester manages.
	DirectReports(ctx context.Context, requester Identity) ([]UserResponse, error)
}
