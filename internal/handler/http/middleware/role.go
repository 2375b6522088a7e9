package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
)

// RequirePermission checks the caller's role against a route permission.
// Admin-only permissions answer with ErrAdminPrivilegeRequired, the rest with
// ErrManagerAccessRequired.
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrMissingToken)
				return
			}

			if !user.HasPermission(identity.Role, permission) {
				if user.HasPermission(user.RoleManager, permission) {
					response.HandleError(w, user.ErrManagerAccessRequired)
				} else {
					response.HandleError(w, user.ErrAdminPrivilegeRequired)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
