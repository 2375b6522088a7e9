package http

import (
	"net/http"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
)

type TeamHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListForUser(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AddMember(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
}

type TeamHandlerImpl struct {
	teamService team.TeamService
}

func NewTeamHandler(teamService team.TeamService) TeamHandler {
	return &TeamHandlerImpl{teamService: teamService}
}

// Create implements TeamHandler.
func (h *TeamHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req team.CreateTeamRequest
	if !decodeJSON(w, r, &req, "CreateTeam") {
		return
	}

	created, err := h.teamService.Create(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team created successfully", created)
}

// List implements TeamHandler.
func (h *TeamHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	teams, err := h.teamService.List(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, teams)
}

// ListForUser implements TeamHandler.
func (h *TeamHandlerImpl) ListForUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	teams, err := h.teamService.ListForUser(r.Context(), identity, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, teams)
}

// Get implements TeamHandler.
func (h *TeamHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.teamService.Get(r.Context(), identity, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}

// Update implements TeamHandler.
func (h *TeamHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req team.UpdateTeamRequest
	if !decodeJSON(w, r, &req, "UpdateTeam") {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.teamService.Update(r.Context(), identity, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated successfully", updated)
}

// Delete implements TeamHandler.
func (h *TeamHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.teamService.Delete(r.Context(), identity, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team deleted successfully", nil)
}

// AddMember implements TeamHandler.
func (h *TeamHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req team.AddMemberRequest
	if !decodeJSON(w, r, &req, "AddMember") {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.teamService.AddMember(r.Context(), identity, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Member added successfully", m)
}

// RemoveMember implements TeamHandler.
func (h *TeamHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	err := h.teamService.RemoveMember(r.Context(), identity, id, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member removed successfully", nil)
}
