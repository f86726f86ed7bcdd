package gate

import (
	"strings"

	"github.com/diewo77/go-crm/internal/apperrors"
)

// RequireRole fails with a Forbidden error unless role is one of allowed.
// Both sides are compared trimmed and case-insensitively. It reads no state
// and must run before the operation loads anything, so an unauthorized caller
// cannot tell a missing record from a denied one.
func RequireRole[R ~string](role R, allowed ...R) error {
	r := normalizeRole(string(role))
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
		if r != "" && normalizeRole(names[i]) == r {
			return nil
		}
	}
	return apperrors.WithMetadata(apperrors.CodeForbidden,
		"access denied, required role(s): "+strings.Join(names, " or "),
		map[string]string{"role": string(role), "allowed": strings.Join(names, ",")},
	)
}

// HasRole is the boolean form of RequireRole.
func HasRole[R ~string](role R, allowed ...R) bool {
	return RequireRole(role, allowed...) == nil
}

func normalizeRole(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
