package audit

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

var entry = Entry{ActorID: 3, ActorEmail: "gina@epic.co", EntityType: "user", EntityID: 9, Action: "create", Details: "role=support"}

func TestDBSink_Record(t *testing.T) {
	d := setupTestDB(t)
	require.NoError(t, d.AutoMigrate(&models.AuditLog{}))
	logger, hook := test.NewNullLogger()
	sink := NewDBSink(d, logger)
	fixed := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	sink.Record(context.Background(), entry)

	var rows []models.AuditLog
	require.NoError(t, d.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "gina@epic.co", rows[0].ActorEmail)
	assert.Equal(t, "create", rows[0].Action)
	assert.True(t, rows[0].CreatedAt.Equal(fixed))
	assert.Empty(t, hook.AllEntries())
}

func TestDBSink_FailureIsLoggedOnly(t *testing.T) {
	d := setupTestDB(t) // no audit_logs table
	logger, hook := test.NewNullLogger()

	NewDBSink(d, logger).Record(context.Background(), entry)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "audit write failed", hook.LastEntry().Message)
	assert.Equal(t, "user", hook.LastEntry().Data["entity"])
}

func TestMulti_FansOut(t *testing.T) {
	l1, h1 := test.NewNullLogger()
	l2, h2 := test.NewNullLogger()

	Multi{NewLogSink(l1), Nop{}, NewLogSink(l2)}.Record(context.Background(), entry)

	require.Len(t, h1.AllEntries(), 1)
	require.Len(t, h2.AllEntries(), 1)
	assert.Equal(t, "audit", h1.LastEntry().Message)
	assert.Equal(t, uint(9), h2.LastEntry().Data["entity_id"])
	assert.Equal(t, "role=support", h2.LastEntry().Data["details"])
}
