package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-crm/internal/apperrors"
)

func TestStatusFor(t *testing.T) {
	tests := map[apperrors.Code]int{
		apperrors.CodeNotFound:           http.StatusNotFound,
		apperrors.CodeForbidden:          http.StatusForbidden,
		apperrors.CodeInvalidToken:       http.StatusUnauthorized,
		apperrors.CodeExpiredSession:     http.StatusUnauthorized,
		apperrors.CodeInvalidCredential:  http.StatusUnauthorized,
		apperrors.CodeInvalidInput:       http.StatusUnprocessableEntity,
		apperrors.CodePreconditionFailed: http.StatusPreconditionFailed,
		apperrors.CodeConflict:           http.StatusConflict,
		apperrors.CodeUnknown:            http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, fmt.Errorf("delete contract: %w", apperrors.Conflict("events linked")))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"events linked","code":"conflict"}`, w.Body.String())
}

func TestError_InternalErrorHidesText(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Acme", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nom":"Acme"}`))
	err := DecodeJSON(r, &dst)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}
