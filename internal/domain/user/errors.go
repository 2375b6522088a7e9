package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrInvalidRole            = errors.New("invalid role")
	ErrCannotPromoteToAdmin   = errors.New("managers cannot grant the admin role")
	ErrCannotEditPrivileged   = errors.New("managers cannot edit other managers or admins")
	ErrCannotChangeOwnRole    = errors.New("users cannot change their own role")
	ErrCannotDeleteSelf       = errors.New("users cannot delete themselves")
	ErrUserManagesTeam        = errors.New("user still manages a team")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrManagerAccessRequired  = errors.New("manager access required")
)
