package team

import (
	"context"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

type TeamService interface {
	Create(ctx context.Context, requester user.Identity, req CreateTeamRequest) (TeamResponse, error)
	Get(ctx context.Context, requester user.Identity, id string) (TeamResponse, error)
	List(ctx context.Context, requester user.Identity) ([]TeamResponse, error)
	ListForUser(ctx context.Context, requester user.Identity, userID string) ([]TeamResponse, error)
	Update(ctx context.Context, requester user.Identity, id string, req UpdateTeamRequest) (TeamResponse, error)
	Delete(ctx context.Context, requester user.Identity, id string) error
	AddMember(ctx context.Context, requester user.Identity, teamID string, req AddMemberRequest) (MembershipResponse, error)
	RemoveMember(ctx context.Context, requester user.Identity, teamID, userID string) error
}
