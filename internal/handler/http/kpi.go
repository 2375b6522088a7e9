package http

import (
	"net/http"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
)

type KPIHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Results(w http.ResponseWriter, r *http.Request)
	Compute(w http.ResponseWriter, r *http.Request)
}

type KPIHandlerImpl struct {
	kpiService kpi.KPIService
}

func NewKPIHandler(kpiService kpi.KPIService) KPIHandler {
	return &KPIHandlerImpl{kpiService: kpiService}
}

// Create implements KPIHandler.
func (h *KPIHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req kpi.CreateKPIRequest
	if !decodeJSON(w, r, &req, "CreateKPI") {
		return
	}

	created, err := h.kpiService.Create(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "KPI created successfully", created)
}

// List implements KPIHandler.
func (h *KPIHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	kpis, err := h.kpiService.List(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, kpis)
}

// Get implements KPIHandler.
func (h *KPIHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	k, err := h.kpiService.Get(r.Context(), identity, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, k)
}

// Delete implements KPIHandler.
func (h *KPIHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.kpiService.Delete(r.Context(), identity, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI deleted successfully", nil)
}

// Results implements KPIHandler. It also serves the export route.
func (h *KPIHandlerImpl) Results(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	q := kpi.RangeQuery{Start: optionalQuery(r, "start"), End: optionalQuery(r, "end")}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	results, err := h.kpiService.Results(r.Context(), identity, id, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// Compute implements KPIHandler.
func (h *KPIHandlerImpl) Compute(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req kpi.ComputeRequest
	if !decodeJSON(w, r, &req, "ComputeKPI") {
		return
	}

	results, err := h.kpiService.Compute(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}
