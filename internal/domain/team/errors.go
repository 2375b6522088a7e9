package team

import "errors"

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrMemberExists       = errors.New("user is already a member of this team")
	ErrMemberNotFound     = errors.New("user is not a member of this team")
	ErrManagerNotFound    = errors.New("manager not found")
	ErrManagerRoleInvalid = errors.New("team manager must have the manager or admin profile")
)
