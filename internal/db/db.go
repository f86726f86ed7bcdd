// Package db opens the database, applies the schema and seeds the bootstrap
// management account.
package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-crm/internal/config"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

var passwordRe = regexp.MustCompile(`(password=)(\S+)`)

// Open connects to the configured database. Postgres connections are retried
// to give the server time to start.
func Open(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if cfg.Driver == "sqlite" {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.WithField("path", cfg.SQLitePath).Info("database opened")
		return db, nil
	}

	dsn := cfg.DSN()
	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("database connection failed, retrying")
		time.Sleep(connectDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.WithField("dsn", maskDSN(dsn)).Info("database opened")
	return db, nil
}

func maskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}
