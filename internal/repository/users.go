package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/diewo77/go-crm/internal/models"
)

// FindUserByEmail looks up a user by exact email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	ok, err := first(s.db.WithContext(ctx), &u, "email = ?", email)
	if !ok {
		return nil, err
	}
	return &u, nil
}

// FindUserByID looks up a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	ok, err := first(s.db.WithContext(ctx), &u, id)
	if !ok {
		return nil, err
	}
	return &u, nil
}

// FindUserByRoleAndEmail looks up a user holding role with the given email.
func (s *Store) FindUserByRoleAndEmail(ctx context.Context, role models.Role, email string) (*models.User, error) {
	var u models.User
	ok, err := first(s.db.WithContext(ctx), &u, "role = ? AND email = ?", role, email)
	if !ok {
		return nil, err
	}
	return &u, nil
}

// ListUsersByRole returns users holding role ordered by name.
func (s *Store) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("name, id").Find(&users).Error
	return users, err
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// CountUserReferences counts the clients and contracts a user is sales
// contact of plus the events they support.
func (s *Store) CountUserReferences(ctx context.Context, id uint) (int64, error) {
	var total int64
	for _, q := range []struct {
		model any
		where string
	}{
		{&models.Client{}, "sales_contact_id = ?"},
		{&models.Contract{}, "sales_contact_id = ?"},
		{&models.Event{}, "support_contact_id = ?"},
	} {
		n, err := s.count(ctx, q.model, q.where, id)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
