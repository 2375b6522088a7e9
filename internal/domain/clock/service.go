package clock

import (
	"context"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

type ClockService interface {
	ClockIn(ctx context.Context, requester user.Identity, req ClockInRequest) (ClockResponse, error)
	ClockOut(ctx context.Context, requester user.Identity, clockID string, req ClockOutRequest) (ClockResponse, error)
	Get(ctx context.Context, requester user.Identity, clockID string) (ClockResponse, error)
	// List returns every clock the requester may see.
	List(ctx context.Context, requester user.Identity, q ListClocksQuery) ([]ClockResponse, error)
	ListForUser(ctx context.Context, requester user.Identity, userID string, q ListClocksQuery) ([]ClockResponse, error)
	Delete(ctx context.Context, requester user.Identity, clockID string) error
}
