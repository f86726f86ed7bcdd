package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

type EventHandler struct {
	base
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService, m *metrics.Metrics) *EventHandler {
	return &EventHandler{base: base{metrics: m}, svc: svc}
}

type eventLister func(context.Context, auth.Identity) ([]models.Event, error)

func (h *EventHandler) list(fn eventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := fn(r.Context(), identity(r))
		if err != nil {
			h.fail(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, events)
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.List)(w, r)
}

func (h *EventHandler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.ListUnassigned)(w, r)
}

func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.ListMine)(w, r)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	e, err := h.svc.Create(r.Context(), identity(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

type assignRequest struct {
	Email string `json:"email"`
}

// AssignSupport handles POST /events/{id}/support.
func (h *EventHandler) AssignSupport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	e, err := h.svc.AssignSupport(r.Context(), identity(r), id, req.Email)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var in services.EventUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	e, err := h.svc.UpdateAssigned(r.Context(), identity(r), id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), identity(r), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
