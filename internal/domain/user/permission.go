package user

type Permission string

const (
	// User Management
	PermissionUserCreate      Permission = "user.create"
	PermissionUserDelete      Permission = "user.delete"
	PermissionUserViewReports Permission = "user.view_reports"

	// Team Management
	PermissionTeamManage  Permission = "team.manage"
	PermissionTeamMembers Permission = "team.members"

	// Planning
	PermissionPlanningWrite Permission = "planning.write"

	// Clocks
	PermissionClockDelete Permission = "clock.delete"

	// KPIs
	PermissionKPICreate Permission = "kpi.create"
	PermissionKPIDelete Permission = "kpi.delete"
)

// RolePermissions maps roles to their route-level permissions.
// Record-level scope is decided by the access evaluator.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionUserCreate,
		PermissionUserDelete,
		PermissionUserViewReports,
		PermissionTeamManage,
		PermissionTeamMembers,
		PermissionPlanningWrite,
		PermissionClockDelete,
		PermissionKPICreate,
		PermissionKPIDelete,
	},
	RoleManager: {
		PermissionUserViewReports,
		PermissionTeamMembers,
		PermissionPlanningWrite,
		PermissionKPICreate,
	},
	RoleEmployee: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
