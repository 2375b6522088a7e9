package auth

import (
	"context"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, requester user.Identity) (user.UserResponse, error)
}
