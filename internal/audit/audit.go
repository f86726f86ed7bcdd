// Package audit records who created, updated or deleted a client or a user.
// Recording is fire-and-forget: a sink that fails logs the failure and the
// caller carries on.
package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/internal/models"
)

// Entry describes one audited mutation.
type Entry struct {
	ActorID    uint
	ActorEmail string
	EntityType string
	EntityID   uint
	Action     string
	Details    string
}

// Sink receives audit entries.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}

// DBSink stores entries in the audit_logs table.
type DBSink struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

// NewDBSink creates a sink writing through db. Write failures go to log.
func NewDBSink(db *gorm.DB, log logrus.FieldLogger) *DBSink {
	return &DBSink{db: db, log: log, now: time.Now}
}

// Record inserts e.
func (s *DBSink) Record(ctx context.Context, e Entry) {
	row := models.AuditLog{
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Details:    e.Details,
		CreatedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.WithError(err).WithFields(fields(e)).Error("audit write failed")
	}
}

// LogSink writes entries to a logger at info level.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Record(_ context.Context, e Entry) {
	s.log.WithFields(fields(e)).Info("audit")
}

// Multi fans entries out to every sink in order.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Entry) {
	for _, s := range m {
		s.Record(ctx, e)
	}
}

func fields(e Entry) logrus.Fields {
	f := logrus.Fields{
		"actor_id":    e.ActorID,
		"actor_email": e.ActorEmail,
		"entity":      e.EntityType,
		"entity_id":   e.EntityID,
		"action":      e.Action,
	}
	if e.Details != "" {
		f["details"] = e.Details
	}
	return f
}
