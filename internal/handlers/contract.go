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

type ContractHandler struct {
	base
	svc *services.ContractService
}

func NewContractHandler(svc *services.ContractService, m *metrics.Metrics) *ContractHandler {
	return &ContractHandler{base: base{metrics: m}, svc: svc}
}

type contractLister func(context.Context, auth.Identity) ([]models.Contract, error)

func (h *ContractHandler) list(fn contractLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contracts, err := fn(r.Context(), identity(r))
		if err != nil {
			h.fail(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, contracts)
	}
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.List)(w, r)
}

func (h *ContractHandler) ListUnsigned(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.ListUnsigned)(w, r)
}

func (h *ContractHandler) ListSigned(w http.ResponseWriter, r *http.Request) {
	h.list(h.svc.ListSigned)(w, r)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ContractInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), identity(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var in services.ContractUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), identity(r), id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
