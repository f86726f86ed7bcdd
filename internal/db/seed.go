package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/models"
)

// Seed creates the bootstrap management account when the users table is
// empty and ADMIN_EMAIL/ADMIN_PASSWORD are set. It is idempotent.
func Seed(db *gorm.DB, cfg config.AuthConfig, log logrus.FieldLogger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Debug("no bootstrap account configured")
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: hash,
		Role:     models.RoleGestion,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create bootstrap user: %w", err)
	}
	log.WithField("email", admin.Email).Info("bootstrap gestion account created")
	return nil
}
