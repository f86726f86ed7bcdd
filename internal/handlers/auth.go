package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/metrics"
)

type AuthHandler struct {
	base
	issuer *auth.Issuer
}

func NewAuthHandler(issuer *auth.Issuer, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{base: base{metrics: m}, issuer: issuer}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	session, err := h.issuer.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.metrics.ObserveLogin()
	httpx.JSON(w, http.StatusOK, session)
}

// Logout acknowledges the end of a session. Tokens are not revoked server
// side; the client drops its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the identity behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, identity(r))
}
