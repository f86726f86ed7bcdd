package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

// FindEvent loads an event with its parent contract.
func (s *Store) FindEvent(ctx context.Context, id uint) (*models.Event, error) {
	var e models.Event
	ok, err := first(s.db.WithContext(ctx).Preload("Contract"), &e, id)
	if !ok {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns events ordered by start time.
func (s *Store) ListEvents(ctx context.Context, f services.EventFilter) ([]models.Event, error) {
	q := s.db.WithContext(ctx)
	switch {
	case f.Unassigned:
		q = q.Where("support_contact_id IS NULL")
	case f.SupportContactID != nil:
		q = q.Where("support_contact_id = ?", *f.SupportContactID)
	}
	var events []models.Event
	err := q.Order("starts_at, id").Find(&events).Error
	return events, err
}

func (s *Store) SaveEvent(ctx context.Context, e *models.Event) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (s *Store) DeleteEvent(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Event{}, id).Error
}
