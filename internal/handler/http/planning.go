package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

type PlanningHandler interface {
	ListTemplates(w http.ResponseWriter, r *http.Request)
	ListDated(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type PlanningHandlerImpl struct {
	planningService planning.PlanningService
	loc             *time.Location
}

func NewPlanningHandler(planningService planning.PlanningService, loc *time.Location) PlanningHandler {
	return &PlanningHandlerImpl{planningService: planningService, loc: loc}
}

// ListTemplates implements PlanningHandler. userId defaults to the caller.
func (h *PlanningHandlerImpl) ListTemplates(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r, identity)
	if !ok {
		return
	}

	templates, err := h.planningService.ListTemplates(r.Context(), identity, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, templates)
}

// ListDated implements PlanningHandler.
func (h *PlanningHandlerImpl) ListDated(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	from, to, err := parseBounds(r, h.loc)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var errs validator.ValidationErrors
	if from == nil {
		errs.Add("start", "start is required")
	}
	if to == nil {
		errs.Add("end", "end is required")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	userID, ok := queryUserID(w, r, identity)
	if !ok {
		return
	}
	q := planning.ListDatedQuery{UserID: userID, From: *from, To: *to}

	plannings, err := h.planningService.ListDated(r.Context(), identity, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, plannings)
}

// Create implements PlanningHandler.
func (h *PlanningHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req planning.CreatePlanningRequest
	if !decodeJSON(w, r, &req, "CreatePlanning") {
		return
	}

	created, err := h.planningService.Create(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Planning created successfully", created)
}

// Update implements PlanningHandler.
func (h *PlanningHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req planning.UpdatePlanningRequest
	if !decodeJSON(w, r, &req, "UpdatePlanning") {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.planningService.Update(r.Context(), identity, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Planning updated successfully", updated)
}

// Delete implements PlanningHandler.
func (h *PlanningHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.planningService.Delete(r.Context(), identity, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Planning deleted successfully", nil)
}
