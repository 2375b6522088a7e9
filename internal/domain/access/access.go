package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Decision is the outcome of an access check. ViaManager is set when the
// grant came from manager scope rather than admin or self access.
type Decision struct {
	Allowed    bool
	ViaManager bool
}

// DeniedError carries diagnostics about a refused access check. Whether they
// reach the caller is decided by the response layer.
type DeniedError struct {
	RequesterID string
	Role        user.Role
	TargetKind  string
	TargetID    string
	Reason      string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s %s cannot access %s %s: %s",
		e.Role, e.RequesterID, e.TargetKind, e.TargetID, e.Reason)
}

func (e *DeniedError) Unwrap() error { return ErrAccessDenied }

// Details returns the diagnostic fields for verbose error responses.
func (e *DeniedError) Details() map[string]string {
	return map[string]string{
		"requesterId": e.RequesterID,
		"role":        string(e.Role),
		"targetKind":  e.TargetKind,
		"targetId":    e.TargetID,
		"reason":      e.Reason,
	}
}

// Resolver computes the set of users reachable by a manager.
type Resolver interface {
	ResolveManagerScope(ctx context.Context, managerID string) (map[string]struct{}, error)
	ResolveStrictManagerScope(ctx context.Context, managerID string) (map[string]struct{}, error)
	// InvalidateScopes drops cached scopes after team or membership changes.
	InvalidateScopes(ctx context.Context)
}

// Evaluator decides whether an identity may act on a user's or team's records.
type Evaluator interface {
	CanAccess(ctx context.Context, requester user.Identity, targetUserID string) (Decision, error)
	CanAccessTeam(ctx context.Context, requester user.Identity, teamID string) (Decision, error)
	// Authorize returns nil when CanAccess allows, a *DeniedError otherwise.
	Authorize(ctx context.Context, requester user.Identity, targetUserID string) error
	AuthorizeTeam(ctx context.Context, requester user.Identity, teamID string) error
	Resolver() Resolver
}

// ScopeCache stores resolved manager scopes. Implementations must tolerate
// concurrent use. Get reports the generation it observed; Set must store under
// that generation so a scope read before Invalidate is never served after it.
type ScopeCache interface {
	Get(ctx context.Context, managerID string) (ids []string, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, managerID string, userIDs []string) error
	Invalidate(ctx context.Context) error
}
