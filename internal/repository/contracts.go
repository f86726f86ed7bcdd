package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (s *Store) CreateContract(ctx context.Context, c *models.Contract) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (s *Store) FindContract(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	ok, err := first(s.db.WithContext(ctx), &c, id)
	if !ok {
		return nil, err
	}
	return &c, nil
}

// LockContract reads a contract and locks its row until the transaction ends.
func (s *Store) LockContract(ctx context.Context, id uint, mode services.LockMode) (*models.Contract, error) {
	var c models.Contract
	ok, err := first(s.locked(s.db.WithContext(ctx), mode), &c, id)
	if !ok {
		return nil, err
	}
	return &c, nil
}

// ListContracts returns contracts with their client, optionally filtered on
// the signed flag.
func (s *Store) ListContracts(ctx context.Context, f services.ContractFilter) ([]models.Contract, error) {
	q := s.db.WithContext(ctx).Preload("Client")
	if f.Signed != nil {
		q = q.Where("signed = ?", *f.Signed)
	}
	var contracts []models.Contract
	err := q.Order("id").Find(&contracts).Error
	return contracts, err
}

func (s *Store) SaveContract(ctx context.Context, c *models.Contract) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (s *Store) DeleteContract(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Contract{}, id).Error
}

func (s *Store) CountContractEvents(ctx context.Context, contractID uint) (int64, error) {
	return s.count(ctx, &models.Event{}, "contract_id = ?", contractID)
}
