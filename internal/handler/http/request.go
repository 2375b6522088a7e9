package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// requester returns the identity set by the auth middleware, answering 401 when it is absent.
func requester(w http.ResponseWriter, r *http.Request) (user.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrMissingToken)
		return user.Identity{}, false
	}
	return identity, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Warn(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body and leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, validator.Single(key, key+" must be a valid UUID"))
		return "", false
	}
	return id, true
}

// queryUserID reads the optional userId query parameter, defaulting to the caller.
func queryUserID(w http.ResponseWriter, r *http.Request, identity user.Identity) (string, bool) {
	id := r.URL.Query().Get("userId")
	if id == "" {
		return identity.UserID, true
	}
	if !validator.IsValidUUID(id) {
		response.HandleError(w, validator.Single("userId", "userId must be a valid UUID"))
		return "", false
	}
	return id, true
}

func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// parseBounds reads optional start/end query parameters as RFC3339 or YYYY-MM-DD in loc.
func parseBounds(r *http.Request, loc *time.Location) (from, to *time.Time, err error) {
	var errs validator.ValidationErrors
	if s := optionalQuery(r, "start"); s != nil {
		t, ok := validator.ParseRangeBound(*s, loc, false)
		if !ok {
			errs.Add("start", "start must be an ISO8601 timestamp or YYYY-MM-DD")
		} else {
			from = &t
		}
	}
	if s := optionalQuery(r, "end"); s != nil {
		t, ok := validator.ParseRangeBound(*s, loc, true)
		if !ok {
			errs.Add("end", "end must be an ISO8601 timestamp or YYYY-MM-DD")
		} else {
			to = &t
		}
	}
	if err := errs.Err(); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, validator.Single("end", "end must not be before start")
	}
	return from, to, nil
}
