package services

import (
	"context"

	"github.com/diewo77/go-crm/internal/models"
)

// LockMode is the row lock taken by Lock* reads inside a transaction.
type LockMode int

const (
	// LockForShare blocks concurrent writers of the row.
	LockForShare LockMode = iota + 1
	// LockForUpdate blocks concurrent writers and lockers of the row.
	LockForUpdate
)

// Every Find*/Lock* method returns (nil, nil) when the row does not exist.

// UserStore is the credential store.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByRoleAndEmail(ctx context.Context, role models.Role, email string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uint) error
	// CountUserReferences counts clients, contracts and events pointing at the user.
	CountUserReferences(ctx context.Context, id uint) (int64, error)
}

// ClientStore persists clients.
type ClientStore interface {
	CreateClient(ctx context.Context, c *models.Client) error
	FindClient(ctx context.Context, id uint) (*models.Client, error)
	LockClient(ctx context.Context, id uint, mode LockMode) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	SaveClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id uint) error
	CountClientContracts(ctx context.Context, clientID uint) (int64, error)
}

// ContractFilter narrows ListContracts. A nil Signed lists every contract.
type ContractFilter struct {
	Signed *bool
}

// ContractStore persists contracts.
type ContractStore interface {
	CreateContract(ctx context.Context, c *models.Contract) error
	FindContract(ctx context.Context, id uint) (*models.Contract, error)
	LockContract(ctx context.Context, id uint, mode LockMode) (*models.Contract, error)
	ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, error)
	SaveContract(ctx context.Context, c *models.Contract) error
	DeleteContract(ctx context.Context, id uint) error
	CountContractEvents(ctx context.Context, contractID uint) (int64, error)
}

// EventFilter narrows ListEvents. Unassigned wins over SupportContactID.
type EventFilter struct {
	Unassigned       bool
	SupportContactID *uint
}

// EventStore persists events.
type EventStore interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	// FindEvent loads the event with its parent contract.
	FindEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error)
	SaveEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id uint) error
}

// Store is the entity repository the lifecycle services run against.
type Store interface {
	UserStore
	ClientStore
	ContractStore
	EventStore
	// Transaction runs fn against a Store bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
