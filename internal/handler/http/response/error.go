package response

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

var exposeDetails atomic.Bool

// SetExposeDetails sets whether 403 and 500 responses carry diagnostics.
func SetExposeDetails(expose bool) {
	exposeDetails.Store(expose)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs)
		return
	}

	var denied *access.DeniedError
	if errors.As(err, &denied) {
		var details map[string]string
		if exposeDetails.Load() {
			details = denied.Details()
		}
		Forbidden(w, "Access denied", details)
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrMissingToken):
		Unauthorized(w, "Missing authentication token")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Permissions
	case errors.Is(err, access.ErrAccessDenied):
		Forbidden(w, "Access denied", nil)
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required", nil)
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required", nil)
	case errors.Is(err, user.ErrCannotPromoteToAdmin),
		errors.Is(err, user.ErrCannotEditPrivileged),
		errors.Is(err, user.ErrCannotChangeOwnRole),
		errors.Is(err, user.ErrCannotDeleteSelf):
		Forbidden(w, err.Error(), nil)

	// Not found
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, team.ErrMemberNotFound):
		NotFound(w, "Team member not found")
	case errors.Is(err, clock.ErrClockNotFound):
		NotFound(w, "Clock not found")
	case errors.Is(err, planning.ErrPlanningNotFound):
		NotFound(w, "Planning not found")
	case errors.Is(err, kpi.ErrKPINotFound):
		NotFound(w, "KPI not found")

	// Conflicts
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrUserManagesTeam):
		Conflict(w, "User still manages a team")
	case errors.Is(err, team.ErrMemberExists):
		Conflict(w, "User is already a member of this team")
	case errors.Is(err, clock.ErrOpenClockExists):
		Conflict(w, "User already has an open clock")
	case errors.Is(err, clock.ErrClockAlreadyClosed):
		Conflict(w, "Clock is already closed")
	case errors.Is(err, planning.ErrTemplateDayExists):
		Conflict(w, "A template already exists for this day of week")

	// Bad input that reached a service without a validation wrapper
	case errors.Is(err, team.ErrManagerNotFound),
		errors.Is(err, team.ErrManagerRoleInvalid),
		errors.Is(err, kpi.ErrInvalidMetric),
		errors.Is(err, kpi.ErrInvalidScope),
		errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		var details map[string]string
		if exposeDetails.Load() {
			details = map[string]string{"cause": err.Error()}
		}
		message := "An unexpected error occurred"
		if errors.Is(err, access.ErrStorageUnavailable) {
			message = "Storage unavailable"
		}
		InternalServerError(w, message, details)
	}
}
