package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	DirectReports(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &UserHandlerImpl{userService: userService}
}

// Create implements UserHandler.
func (h *UserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req user.CreateUserRequest
	if !decodeJSON(w, r, &req, "CreateUser") {
		return
	}

	created, err := h.userService.Create(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("User created", "user_id", created.ID, "by", identity.UserID)
	response.Created(w, "User created successfully", created)
}

// List implements UserHandler.
func (h *UserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	users, err := h.userService.List(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

// Get implements UserHandler.
func (h *UserHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.userService.Get(r.Context(), identity, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, u)
}

// Update implements UserHandler.
func (h *UserHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req user.UpdateUserRequest
	if !decodeJSON(w, r, &req, "UpdateUser") {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.userService.Update(r.Context(), identity, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User updated successfully", updated)
}

// Delete implements UserHandler.
func (h *UserHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(r.Context(), identity, id); err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("User deleted", "user_id", id, "by", identity.UserID)
	response.SuccessWithMessage(w, "User deleted successfully", nil)
}

// DirectReports implements UserHandler.
func (h *UserHandlerImpl) DirectReports(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	reports, err := h.userService.DirectReports(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, reports)
}
