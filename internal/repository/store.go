// Package repository is the gorm-backed credential store and entity
// repository.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-crm/internal/services"
)

// Store implements services.Store and auth.UserFinder on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ services.Store = (*Store)(nil)

// New wraps db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and seeding.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx services.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// first loads one row into dst and maps "record not found" to found=false.
func first(q *gorm.DB, dst any, conds ...any) (bool, error) {
	err := q.First(dst, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// locked adds a row lock to q. SQLite has no row locks; its transactions
// serialise writers on their own.
func (s *Store) locked(q *gorm.DB, mode services.LockMode) *gorm.DB {
	if s.db.Dialector.Name() == "sqlite" {
		return q
	}
	strength := "SHARE"
	if mode == services.LockForUpdate {
		strength = "UPDATE"
	}
	return q.Clauses(clause.Locking{Strength: strength})
}

func (s *Store) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error
	return n, err
}
