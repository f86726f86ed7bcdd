package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/validation"
)

// ContractInput holds the fields of a new contract. Signed is explicit.
type ContractInput struct {
	ClientID        uint    `json:"client_id"`
	AmountTotal     float64 `json:"amount_total"`
	AmountRemaining float64 `json:"amount_remaining"`
	Signed          bool    `json:"signed"`
}

// ContractUpdate holds the fields to change. Nil fields are kept.
type ContractUpdate struct {
	AmountTotal     *float64 `json:"amount_total"`
	AmountRemaining *float64 `json:"amount_remaining"`
	Signed          *bool    `json:"signed"`
}

// ContractService manages contracts.
type ContractService struct {
	base
}

func NewContractService(store Store, opts ...Option) *ContractService {
	return &ContractService{base: newBase(store, opts)}
}

func validateAmounts(total, remaining float64) error {
	v := validation.Violations{}
	validation.NonNegativeFloat("amount_total", total, v)
	validation.NonNegativeFloat("amount_remaining", remaining, v)
	if v.Empty() && remaining > total {
		v["amount_remaining"] = "exceeds_amount_total"
	}
	return v.Err()
}

// Create records a contract for an existing client. The caller becomes its
// sales contact.
func (s *ContractService) Create(ctx context.Context, id auth.Identity, in ContractInput) (c *models.Contract, err error) {
	defer s.trace("contract.create", id, &err)
	if err := requireRole(id, models.RoleCommercial, models.RoleGestion); err != nil {
		return nil, err
	}
	if err := validateAmounts(in.AmountTotal, in.AmountRemaining); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		client, err := tx.LockClient(ctx, in.ClientID, LockForShare)
		if err != nil {
			return fmt.Errorf("lock client: %w", err)
		}
		if client == nil {
			return apperrors.WithMetadata(apperrors.CodeInvalidInput, "client not found",
				map[string]string{"client_id": fmt.Sprint(in.ClientID)})
		}
		c = &models.Contract{
			ClientID:        client.ID,
			SalesContactID:  id.ID,
			AmountTotal:     in.AmountTotal,
			AmountRemaining: in.AmountRemaining,
			CreatedAt:       s.now(),
		}
		c.SetSigned(in.Signed, s.now())
		if err := tx.CreateContract(ctx, c); err != nil {
			return fmt.Errorf("create contract: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"contract_id": c.ID, "client_id": c.ClientID, "user_id": id.ID}).Info("contract created")
	return c, nil
}

// List returns every contract.
func (s *ContractService) List(ctx context.Context, id auth.Identity) ([]models.Contract, error) {
	return s.list(ctx, "contract.list", id, ContractFilter{}, allRoles...)
}

// ListUnsigned returns contracts not signed yet.
func (s *ContractService) ListUnsigned(ctx context.Context, id auth.Identity) ([]models.Contract, error) {
	signed := false
	return s.list(ctx, "contract.list_unsigned", id, ContractFilter{Signed: &signed},
		models.RoleCommercial, models.RoleGestion)
}

// ListSigned returns signed contracts, the ones events can be attached to.
func (s *ContractService) ListSigned(ctx context.Context, id auth.Identity) ([]models.Contract, error) {
	signed := true
	return s.list(ctx, "contract.list_signed", id, ContractFilter{Signed: &signed}, allRoles...)
}

func (s *ContractService) list(ctx context.Context, op string, id auth.Identity, f ContractFilter, roles ...models.Role) (contracts []models.Contract, err error) {
	defer s.trace(op, id, &err)
	if err := requireRole(id, roles...); err != nil {
		return nil, err
	}
	contracts, err = s.store.ListContracts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, nil
}

// Update changes the given fields. A commercial must own the contract,
// gestion may update any. Setting Signed to true stamps SignedAt with the
// current time even when already signed; false clears it.
func (s *ContractService) Update(ctx context.Context, id auth.Identity, contractID uint, in ContractUpdate) (c *models.Contract, err error) {
	defer s.trace("contract.update", id, &err)
	if err := requireRole(id, models.RoleCommercial, models.RoleGestion); err != nil {
		return nil, err
	}
	c, err = s.store.FindContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("find contract: %w", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("contract not found")
	}
	if err := s.gate.Authorize(ctx, id, gate.ActionUpdate, policy.ResourceContract, c); err != nil {
		return nil, err
	}

	total, remaining := c.AmountTotal, c.AmountRemaining
	if in.AmountTotal != nil {
		total = *in.AmountTotal
	}
	if in.AmountRemaining != nil {
		remaining = *in.AmountRemaining
	}
	if err := validateAmounts(total, remaining); err != nil {
		return nil, err
	}

	c.AmountTotal, c.AmountRemaining = total, remaining
	if in.Signed != nil {
		c.SetSigned(*in.Signed, s.now())
	}
	if err := s.store.SaveContract(ctx, c); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}

	s.log.WithFields(logrus.Fields{"contract_id": c.ID, "user_id": id.ID, "signed": c.Signed}).Info("contract updated")
	return c, nil
}

// Delete removes a contract that no event references. The contract row is
// locked for update so a concurrent event creation either lands before the
// count, making the delete fail, or waits until the contract is gone.
func (s *ContractService) Delete(ctx context.Context, id auth.Identity, contractID uint) (err error) {
	defer s.trace("contract.delete", id, &err)
	if err := requireRole(id, models.RoleCommercial, models.RoleGestion); err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		c, err := tx.LockContract(ctx, contractID, LockForUpdate)
		if err != nil {
			return fmt.Errorf("lock contract: %w", err)
		}
		if c == nil {
			return apperrors.NotFound("contract not found")
		}
		n, err := tx.CountContractEvents(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("count events: %w", err)
		}
		if n > 0 {
			return apperrors.WithMetadata(apperrors.CodeConflict, "events linked",
				map[string]string{"events": fmt.Sprint(n)})
		}
		if err := tx.DeleteContract(ctx, c.ID); err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"contract_id": contractID, "user_id": id.ID}).Info("contract deleted")
	return nil
}
