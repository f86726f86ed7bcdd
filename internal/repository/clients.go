package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (s *Store) FindClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	ok, err := first(s.db.WithContext(ctx), &c, id)
	if !ok {
		return nil, err
	}
	return &c, nil
}

// LockClient reads a client and locks its row until the transaction ends.
func (s *Store) LockClient(ctx context.Context, id uint, mode services.LockMode) (*models.Client, error) {
	var c models.Client
	ok, err := first(s.locked(s.db.WithContext(ctx), mode), &c, id)
	if !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Order("id").Find(&clients).Error
	return clients, err
}

func (s *Store) SaveClient(ctx context.Context, c *models.Client) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Client{}, id).Error
}

func (s *Store) CountClientContracts(ctx context.Context, clientID uint) (int64, error) {
	return s.count(ctx, &models.Contract{}, "client_id = ?", clientID)
}
