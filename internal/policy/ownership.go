// Package policy holds the ownership rules evaluated on loaded clients,
// contracts and events once the role guard has let the caller through.
package policy

import (
	"context"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
)

// Ownable is implemented by records that have an accountable user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows a user to act on records they own.
type OwnershipPolicy struct {
	reason string
}

// NewOwnershipPolicy creates an ownership policy whose denials read reason.
func NewOwnershipPolicy(reason string) *OwnershipPolicy {
	return &OwnershipPolicy{reason: reason}
}

// Can allows nil resources (list/create carry no target) and otherwise
// compares the record owner with the user. Records that are not Ownable are
// denied.
func (p *OwnershipPolicy) Can(_ context.Context, user auth.Identity, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == user.ID
}

// Reason implements gate.Reasoner.
func (p *OwnershipPolicy) Reason(gate.Action) string { return p.reason }

// RoleBypassPolicy wraps another policy and always allows the given roles.
type RoleBypassPolicy struct {
	inner gate.Policy[auth.Identity]
	roles []models.Role
}

// NewRoleBypassPolicy lets users holding one of roles skip inner.
func NewRoleBypassPolicy(inner gate.Policy[auth.Identity], roles ...models.Role) *RoleBypassPolicy {
	return &RoleBypassPolicy{inner: inner, roles: roles}
}

// Can checks the bypass roles first, then falls back to inner.
func (p *RoleBypassPolicy) Can(ctx context.Context, user auth.Identity, action gate.Action, resource any) bool {
	if gate.HasRole(user.Role, p.roles...) {
		return true
	}
	return p.inner.Can(ctx, user, action, resource)
}

// Reason forwards the inner policy's denial message.
func (p *RoleBypassPolicy) Reason(action gate.Action) string {
	if r, ok := p.inner.(gate.Reasoner); ok {
		return r.Reason(action)
	}
	return "not allowed"
}

// ContractOwnerPolicy authorizes event work against the sales contact of the
// event's contract. Resources are either a *models.Event with its Contract
// loaded or the parent *models.Contract itself. Staffing an event is a
// management decision and is reserved to gestion.
type ContractOwnerPolicy struct{}

// Can reports whether user is the sales contact of the parent contract, or
// for ActionAssign whether user belongs to gestion.
func (ContractOwnerPolicy) Can(_ context.Context, user auth.Identity, action gate.Action, resource any) bool {
	if action == gate.ActionAssign {
		return gate.HasRole(user.Role, models.RoleGestion)
	}
	switch r := resource.(type) {
	case nil:
		return true
	case *models.Contract:
		return r != nil && r.SalesContactID == user.ID
	case *models.Event:
		return r != nil && r.Contract != nil && r.Contract.SalesContactID == user.ID
	default:
		return false
	}
}

// Reason implements gate.Reasoner.
func (ContractOwnerPolicy) Reason(action gate.Action) string {
	switch action {
	case gate.ActionCreate:
		return "not your contract"
	case gate.ActionAssign:
		return "only management assigns support"
	}
	return "not the sales contact of this event's contract"
}
