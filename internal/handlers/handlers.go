// Package handlers exposes the lifecycle services as a JSON API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/metrics"
)

// base carries what every handler needs to report failures.
type base struct {
	metrics *metrics.Metrics
}

// fail counts err and writes it as a JSON error.
func (b base) fail(w http.ResponseWriter, err error) {
	b.metrics.ObserveError(err)
	httpx.Error(w, err)
}

// identity returns the caller resolved by auth.Middleware. Routes using it
// are wrapped in auth.RequireAuth.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidInput, "invalid id", map[string]string{"id": raw})
	}
	return uint(id), nil
}
