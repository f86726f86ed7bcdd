// Package gate provides the authorization checkpoints shared by every
// lifecycle operation: a role guard evaluated before any state is read, and a
// registry of per-resource policies answering ownership questions once the
// target has been loaded.
//
// The Gate is generic over the subject type so it can be driven by a plain id
// or by a resolved identity struct.
package gate

import (
	"context"
	"fmt"

	"github.com/diewo77/go-crm/internal/apperrors"
)

// Gate is the central registry of resource policies.
// U is the subject type (must be comparable for the zero-value check).
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a given resource type (e.g., "contract").
// Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize checks the policy registered for resourceType.
// Returns ErrUnauthenticated for a zero-value subject, ErrNoPolicyDefined when
// nothing is registered, and a Forbidden error when the policy denies.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPolicyDefined, resourceType)
	}
	if !p.Can(ctx, user, action, resource) {
		msg := fmt.Sprintf("not allowed to %s this %s", action, resourceType)
		if r, ok := p.(Reasoner); ok {
			msg = r.Reason(action)
		}
		return apperrors.WithMetadata(apperrors.CodeForbidden, msg, map[string]string{
			"resource": resourceType,
			"action":   string(action),
		})
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
