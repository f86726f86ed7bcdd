package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/services"
)

type UserHandler struct {
	base
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService, m *metrics.Metrics) *UserHandler {
	return &UserHandler{base: base{metrics: m}, svc: svc}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	u, err := h.svc.Create(r.Context(), identity(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *UserHandler) ListSupport(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListSupport(r.Context(), identity(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// Update handles PATCH /users/{email}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UserUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	u, err := h.svc.Update(r.Context(), identity(r), r.PathValue("email"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Delete handles DELETE /users/{email}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), identity(r), r.PathValue("email")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
