package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Client{},
		&models.Contract{},
		&models.Event{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates tables from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Migrate applies the schema. With MIGRATIONS enabled on postgres the
// embedded SQL migrations run through golang-migrate; otherwise gorm
// AutoMigrate is used.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		if err := runSQLMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return err
	}

	for _, table := range []string{"users", "clients", "contracts", "events"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
