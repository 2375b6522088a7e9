package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
)

const (
	kindUser = "user"
	kindTeam = "team"

	reasonEmployeeSelfOnly = "employees may only access their own records"
	reasonOutsideScope     = "target is outside the manager's teams"
	reasonEmployeeNoTeams  = "employees may not access team records"
	reasonNotTeamMember    = "manager neither manages nor belongs to the team"
)

type EvaluatorImpl struct {
	teams    team.TeamRepository
	resolver access.Resolver
}

func NewEvaluator(teams team.TeamRepository, resolver access.Resolver) access.Evaluator {
	return &EvaluatorImpl{teams: teams, resolver: resolver}
}

// Resolver implements access.Evaluator.
func (e *EvaluatorImpl) Resolver() access.Resolver {
	return e.resolver
}

// CanAccess implements access.Evaluator.
func (e *EvaluatorImpl) CanAccess(ctx context.Context, requester user.Identity, targetUserID string) (access.Decision, error) {
	decision, _, err := e.decideUser(ctx, requester, targetUserID)
	return decision, err
}

// Authorize implements access.Evaluator.
func (e *EvaluatorImpl) Authorize(ctx context.Context, requester user.Identity, targetUserID string) error {
	decision, reason, err := e.decideUser(ctx, requester, targetUserID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return denied(requester, kindUser, targetUserID, reason)
	}
	return nil
}

// CanAccessTeam implements access.Evaluator.
func (e *EvaluatorImpl) CanAccessTeam(ctx context.Context, requester user.Identity, teamID string) (access.Decision, error) {
	decision, _, err := e.decideTeam(ctx, requester, teamID)
	return decision, err
}

// AuthorizeTeam implements access.Evaluator.
func (e *EvaluatorImpl) AuthorizeTeam(ctx context.Context, requester user.Identity, teamID string) error {
	decision, reason, err := e.decideTeam(ctx, requester, teamID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return denied(requester, kindTeam, teamID, reason)
	}
	return nil
}

func (e *EvaluatorImpl) decideUser(ctx context.Context, requester user.Identity, targetUserID string) (access.Decision, string, error) {
	var (
		decision access.Decision
		reason   string
	)

	switch requester.Role {
	case user.RoleAdmin:
		decision.Allowed = true
	case user.RoleManager:
		if requester.UserID == targetUserID {
			decision.Allowed = true
			break
		}
		scope, err := e.resolver.ResolveManagerScope(ctx, requester.UserID)
		if err != nil {
			return access.Decision{}, "", err
		}
		_, decision.Allowed = scope[targetUserID]
		decision.ViaManager = decision.Allowed
		if !decision.Allowed {
			reason = reasonOutsideScope
		}
	case user.RoleEmployee:
		decision.Allowed = requester.UserID == targetUserID
		if !decision.Allowed {
			reason = reasonEmployeeSelfOnly
		}
	default:
		return access.Decision{}, "", fmt.Errorf("%w: %q", user.ErrInvalidRole, requester.Role)
	}

	metrics.ObserveAccessDecision(string(requester.Role), kindUser, decision.Allowed)
	return decision, reason, nil
}

func (e *EvaluatorImpl) decideTeam(ctx context.Context, requester user.Identity, teamID string) (access.Decision, string, error) {
	var (
		decision access.Decision
		reason   string
	)

	switch requester.Role {
	case user.RoleAdmin:
		if _, err := e.teams.GetByID(ctx, teamID); err != nil {
			if errors.Is(err, team.ErrTeamNotFound) {
				return access.Decision{}, "", err
			}
			return access.Decision{}, "", fmt.Errorf("%w: load team: %w", access.ErrStorageUnavailable, err)
		}
		decision.Allowed = true
	case user.RoleManager:
		t, err := e.teams.GetByID(ctx, teamID)
		switch {
		case errors.Is(err, team.ErrTeamNotFound):
			reason = reasonNotTeamMember
		case err != nil:
			return access.Decision{}, "", fmt.Errorf("%w: load team: %w", access.ErrStorageUnavailable, err)
		case t.ManagerID == requester.UserID:
			decision = access.Decision{Allowed: true, ViaManager: true}
		default:
			member, err := e.teams.IsMember(ctx, teamID, requester.UserID)
			if err != nil {
				return access.Decision{}, "", fmt.Errorf("%w: check membership: %w", access.ErrStorageUnavailable, err)
			}
			decision = access.Decision{Allowed: member, ViaManager: member}
			if !member {
				reason = reasonNotTeamMember
			}
		}
	case user.RoleEmployee:
		reason = reasonEmployeeNoTeams
	default:
		return access.Decision{}, "", fmt.Errorf("%w: %q", user.ErrInvalidRole, requester.Role)
	}

	metrics.ObserveAccessDecision(string(requester.Role), kindTeam, decision.Allowed)
	return decision, reason, nil
}

func denied(requester user.Identity, kind, targetID, reason string) error {
	return &access.DeniedError{
		RequesterID: requester.UserID,
		Role:        requester.Role,
		TargetKind:  kind,
		TargetID:    targetID,
		Reason:      reason,
	}
}
