package policy

import (
	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
)

// Resource names registered on the gate.
const (
	ResourceClient   = "client"
	ResourceContract = "contract"
	ResourceEvent    = "event"
)

// NewGate returns the gate with every ownership rule registered:
// clients are mutated by their owner only, contracts by their owner or by
// gestion, events by the sales contact of their contract.
func NewGate() *gate.Gate[auth.Identity] {
	g := gate.NewGate[auth.Identity]()
	g.Register(ResourceClient, NewOwnershipPolicy("not your client"))
	g.Register(ResourceContract, NewRoleBypassPolicy(NewOwnershipPolicy("not your contract"), models.RoleGestion))
	g.Register(ResourceEvent, ContractOwnerPolicy{})
	return g
}
