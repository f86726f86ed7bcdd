package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/go-crm/internal/apperrors"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeInvalidToken, apperrors.CodeExpiredSession, apperrors.CodeInvalidCredential:
		return http.StatusUnauthorized
	case apperrors.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case apperrors.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case apperrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error. Domain errors keep their message; anything
// else is reported as an internal error without leaking its text.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: string(apperrors.CodeUnknown)})
		return
	}
	resp := ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)}
	if len(appErr.Metadata) > 0 {
		resp.Details = appErr.Metadata
	}
	JSON(w, StatusFor(appErr.Code), resp)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid JSON body", err)
	}
	return nil
}
