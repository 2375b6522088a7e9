package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type TeamServiceImpl struct {
	teams     team.TeamRepository
	users     user.UserRepository
	evaluator access.Evaluator
}

func NewTeamService(teamRepository team.TeamRepository, userRepository user.UserRepository, evaluator access.Evaluator) team.TeamService {
	return &TeamServiceImpl{
		teams:     teamRepository,
		users:     userRepository,
		evaluator: evaluator,
	}
}

// Create implements team.TeamService.
func (s *TeamServiceImpl) Create(ctx context.Context, requester user.Identity, req team.CreateTeamRequest) (team.TeamResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionTeamManage) {
		return team.TeamResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.checkManager(ctx, req.ManagerID); err != nil {
		return team.TeamResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("generate team id: %w", err)
	}

	created, err := s.teams.Create(ctx, team.Team{
		ID:          id.String(),
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("create team: %w", err)
	}

	s.evaluator.Resolver().InvalidateScopes(ctx)
	return team.NewTeamResponse(created, []string{}), nil
}

// Get implements team.TeamService.
func (s *TeamServiceImpl) Get(ctx context.Context, requester user.Identity, id string) (team.TeamResponse, error) {
	if err := s.evaluator.AuthorizeTeam(ctx, requester, id); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return s.withMembers(ctx, t)
}

// List implements team.TeamService.
func (s *TeamServiceImpl) List(ctx context.Context, requester user.Identity) ([]team.TeamResponse, error) {
	var (
		teams []team.Team
		err   error
	)
	if requester.IsAdmin() {
		teams, err = s.teams.List(ctx)
	} else {
		teams, err = s.teams.ListForUser(ctx, requester.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return s.responses(teams), nil
}

// ListForUser implements team.TeamService.
func (s *TeamServiceImpl) ListForUser(ctx context.Context, requester user.Identity, userID string) ([]team.TeamResponse, error) {
	if err := s.evaluator.Authorize(ctx, requester, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	teams, err := s.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams for user: %w", err)
	}
	return s.responses(teams), nil
}

// Update implements team.TeamService.
func (s *TeamServiceImpl) Update(ctx context.Context, requester user.Identity, id string, req team.UpdateTeamRequest) (team.TeamResponse, error) {
	if !user.HasPermission(requester.Role, user.PermissionTeamManage) {
		return team.TeamResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.ManagerID != nil && *req.ManagerID != t.ManagerID {
		if err := s.checkManager(ctx, *req.ManagerID); err != nil {
			return team.TeamResponse{}, err
		}
		t.ManagerID = *req.ManagerID
	}

	updated, err := s.teams.Update(ctx, t)
	if err != nil {
		return team.TeamResponse{}, err
	}

	s.evaluator.Resolver().InvalidateScopes(ctx)
	return s.withMembers(ctx, updated)
}

// Delete implements team.TeamService.
func (s *TeamServiceImpl) Delete(ctx context.Context, requester user.Identity, id string) error {
	if !user.HasPermission(requester.Role, user.PermissionTeamManage) {
		return user.ErrAdminPrivilegeRequired
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return err
	}
	s.evaluator.Resolver().InvalidateScopes(ctx)
	return nil
}

// AddMember implements team.TeamService.
func (s *TeamServiceImpl) AddMember(ctx context.Context, requester user.Identity, teamID string, req team.AddMemberRequest) (team.MembershipResponse, error) {
	if err := req.Validate(); err != nil {
		return team.MembershipResponse{}, err
	}
	if err := s.authorizeMembers(ctx, requester, teamID); err != nil {
		return team.MembershipResponse{}, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return team.MembershipResponse{}, err
	}

	m, err := s.teams.AddMember(ctx, teamID, req.UserID)
	if err != nil {
		return team.MembershipResponse{}, err
	}

	s.evaluator.Resolver().InvalidateScopes(ctx)
	return team.MembershipResponse{
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}, nil
}

// RemoveMember implements team.TeamService.
func (s *TeamServiceImpl) RemoveMember(ctx context.Context, requester user.Identity, teamID, userID string) error {
	if err := s.authorizeMembers(ctx, requester, teamID); err != nil {
		return err
	}
	if err := s.teams.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}
	s.evaluator.Resolver().InvalidateScopes(ctx)
	return nil
}

// authorizeMembers allows admins and the team's declared manager. Membership
// alone does not grant edits.
func (s *TeamServiceImpl) authorizeMembers(ctx context.Context, requester user.Identity, teamID string) error {
	if !user.HasPermission(requester.Role, user.PermissionTeamMembers) {
		return user.ErrManagerAccessRequired
	}

	t, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) && !requester.IsAdmin() {
			return membersDenied(requester, teamID)
		}
		return err
	}
	if !requester.IsAdmin() && t.ManagerID != requester.UserID {
		return membersDenied(requester, teamID)
	}
	return nil
}

func membersDenied(requester user.Identity, teamID string) error {
	return &access.DeniedError{
		RequesterID: requester.UserID,
		Role:        requester.Role,
		TargetKind:  "team",
		TargetID:    teamID,
		Reason:      "only the team's manager may change its members",
	}
}

// checkManager requires an existing manager or admin user.
func (s *TeamServiceImpl) checkManager(ctx context.Context, managerID string) error {
	manager, err := s.users.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return team.ErrManagerNotFound
		}
		return err
	}
	if manager.Role == user.RoleEmployee {
		return team.ErrManagerRoleInvalid
	}
	return nil
}

func (s *TeamServiceImpl) withMembers(ctx context.Context, t team.Team) (team.TeamResponse, error) {
	memberIDs, err := s.teams.ListMemberIDs(ctx, t.ID)
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("list team members: %w", err)
	}
	return team.NewTeamResponse(t, memberIDs), nil
}

func (s *TeamServiceImpl) responses(teams []team.Team) []team.TeamResponse {
	out := make([]team.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, team.NewTeamResponse(t, nil))
	}
	return out
}
