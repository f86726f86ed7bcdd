package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/validation"
)

// ClientInput holds the fields of a new client.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// ClientUpdate holds the fields to change. Nil fields are kept.
type ClientUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

// ClientService manages clients. Listing is organisation-wide, mutation is
// restricted to the owning commercial.
type ClientService struct {
	base
}

func NewClientService(store Store, opts ...Option) *ClientService {
	return &ClientService{base: newBase(store, opts)}
}

// Create records a client owned by the calling commercial.
func (s *ClientService) Create(ctx context.Context, id auth.Identity, in ClientInput) (c *models.Client, err error) {
	defer s.trace("client.create", id, &err)
	if err := requireRole(id, models.RoleCommercial); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	if strings.TrimSpace(in.Phone) != "" {
		validation.Phone("phone", in.Phone, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	c = &models.Client{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Company:        strings.TrimSpace(in.Company),
		SalesContactID: id.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.WithFields(logrus.Fields{"client_id": c.ID, "user_id": id.ID}).Info("client created")
	s.record(ctx, id, policy.ResourceClient, c.ID, "create", "name="+c.Name)
	return c, nil
}

// List returns every client.
func (s *ClientService) List(ctx context.Context, id auth.Identity) (clients []models.Client, err error) {
	defer s.trace("client.list", id, &err)
	if err := requireRole(id, allRoles...); err != nil {
		return nil, err
	}
	clients, err = s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Get returns one client.
func (s *ClientService) Get(ctx context.Context, id auth.Identity, clientID uint) (c *models.Client, err error) {
	defer s.trace("client.get", id, &err)
	if err := requireRole(id, allRoles...); err != nil {
		return nil, err
	}
	c, err = s.store.FindClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("client not found")
	}
	return c, nil
}

// Update changes the given fields of a client owned by the caller. Every
// provided field is validated before any is applied.
func (s *ClientService) Update(ctx context.Context, id auth.Identity, clientID uint, in ClientUpdate) (c *models.Client, err error) {
	defer s.trace("client.update", id, &err)
	if err := requireRole(id, models.RoleCommercial); err != nil {
		return nil, err
	}
	c, err = s.store.FindClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("client not found")
	}
	if err := s.gate.Authorize(ctx, id, gate.ActionUpdate, policy.ResourceClient, c); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Name != nil {
		validation.Required("name", *in.Name, v)
	}
	if in.Email != nil {
		validation.Email("email", *in.Email, v)
	}
	if in.Phone != nil {
		validation.Phone("phone", *in.Phone, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var changed []string
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
		changed = append(changed, "name")
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
		changed = append(changed, "email")
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
		changed = append(changed, "phone")
	}
	if in.Company != nil {
		c.Company = strings.TrimSpace(*in.Company)
		changed = append(changed, "company")
	}
	c.UpdatedAt = s.now()
	if err := s.store.SaveClient(ctx, c); err != nil {
		return nil, fmt.Errorf("save client: %w", err)
	}

	s.log.WithFields(logrus.Fields{"client_id": c.ID, "user_id": id.ID}).Info("client updated")
	s.record(ctx, id, policy.ResourceClient, c.ID, "update", "fields="+strings.Join(changed, ","))
	return c, nil
}

// Delete removes a client owned by the caller. Clients with contracts are
// kept; the check and the delete share one transaction holding the client row.
func (s *ClientService) Delete(ctx context.Context, id auth.Identity, clientID uint) (err error) {
	defer s.trace("client.delete", id, &err)
	if err := requireRole(id, models.RoleCommercial); err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		c, err := tx.LockClient(ctx, clientID, LockForUpdate)
		if err != nil {
			return fmt.Errorf("lock client: %w", err)
		}
		if c == nil {
			return apperrors.NotFound("client not found")
		}
		if err := s.gate.Authorize(ctx, id, gate.ActionDelete, policy.ResourceClient, c); err != nil {
			return err
		}
		n, err := tx.CountClientContracts(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("count contracts: %w", err)
		}
		if n > 0 {
			return apperrors.WithMetadata(apperrors.CodeConflict, "contracts linked",
				map[string]string{"contracts": fmt.Sprint(n)})
		}
		if err := tx.DeleteClient(ctx, c.ID); err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"client_id": clientID, "user_id": id.ID}).Info("client deleted")
	s.record(ctx, id, policy.ResourceClient, clientID, "delete", "")
	return nil
}
