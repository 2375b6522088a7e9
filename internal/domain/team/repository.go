package team

import "context"

type TeamRepository interface {
	Create(ctx context.Context, t Team) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	List(ctx context.Context) ([]Team, error)
	// ListForUser returns teams the user manages or belongs to.
	ListForUser(ctx context.Context, userID string) ([]Team, error)
	Update(ctx context.Context, t Team) (Team, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, teamID, userID string) (Membership, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	// ListMemberIDs returns membership rows in insertion order.
	ListMemberIDs(ctx context.Context, teamID string) ([]string, error)

	// ScopeUserIDs returns members and declared managers of every team the
	// manager manages or belongs to.
	ScopeUserIDs(ctx context.Context, managerID string) ([]string, error)
	// StrictScopeUserIDs returns members of teams the manager declares.
	StrictScopeUserIDs(ctx context.Context, managerID string) ([]string, error)
}
