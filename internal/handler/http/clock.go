package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
)

type ClockHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListForUser(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type ClockHandlerImpl struct {
	clockService clock.ClockService
	loc          *time.Location
}

func NewClockHandler(clockService clock.ClockService, loc *time.Location) ClockHandler {
	return &ClockHandlerImpl{clockService: clockService, loc: loc}
}

// ClockIn implements ClockHandler.
func (h *ClockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req clock.ClockInRequest
	if !decodeOptionalJSON(w, r, &req, "ClockIn") {
		return
	}

	c, err := h.clockService.ClockIn(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Clock-in recorded", "clock_id", c.ID, "user_id", c.UserID)
	response.Created(w, "Clock-in recorded", c)
}

// ClockOut implements ClockHandler.
func (h *ClockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	var req clock.ClockOutRequest
	if !decodeOptionalJSON(w, r, &req, "ClockOut") {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.clockService.ClockOut(r.Context(), identity, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Clock-out recorded", "clock_id", c.ID, "user_id", c.UserID)
	response.SuccessWithMessage(w, "Clock-out recorded", c)
}

// List implements ClockHandler.
func (h *ClockHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	q, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	clocks, err := h.clockService.List(r.Context(), identity, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, clocks)
}

// ListForUser implements ClockHandler.
func (h *ClockHandlerImpl) ListForUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}
	q, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	clocks, err := h.clockService.ListForUser(r.Context(), identity, userID, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, clocks)
}

// Get implements ClockHandler.
func (h *ClockHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.clockService.Get(r.Context(), identity, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, c)
}

// Delete implements ClockHandler.
func (h *ClockHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requester(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.clockService.Delete(r.Context(), identity, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Clock deleted successfully", nil)
}

func (h *ClockHandlerImpl) listQuery(w http.ResponseWriter, r *http.Request) (clock.ListClocksQuery, bool) {
	from, to, err := parseBounds(r, h.loc)
	if err != nil {
		response.HandleError(w, err)
		return clock.ListClocksQuery{}, false
	}
	return clock.ListClocksQuery{From: from, To: to}, true
}
