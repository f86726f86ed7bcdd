// Package auth turns an email/password pair into a signed, time-limited
// session token and turns that token back into the acting Identity.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/models"
)

type ctxKey string

const (
	identityCtxKey = ctxKey("identity")
	errorCtxKey    = ctxKey("sessionError")
)

// Identity is the resolved (id, email, role) triple of the caller of an operation.
type Identity struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// IsZero reports whether no identity has been resolved.
func (i Identity) IsZero() bool { return i == Identity{} }

// Resolver resolves a session token into the current identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// WithIdentity stores the identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext extracts the identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok && !id.IsZero()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}

// Middleware attaches the identity to the request context when a valid bearer
// token is present. Resolution failures are kept for RequireAuth to report.
func Middleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r); ok {
				id, err := resolver.Resolve(r.Context(), token)
				ctx := r.Context()
				if err != nil {
					ctx = context.WithValue(ctx, errorCtxKey, err)
				} else {
					ctx = WithIdentity(ctx, id)
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns 401 JSON when no identity was resolved for the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			if err, ok := r.Context().Value(errorCtxKey).(error); ok {
				httpx.Error(w, err)
				return
			}
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
