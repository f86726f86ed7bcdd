package models

import "time"

// AuditLog records who created, updated or deleted a client or a user.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	ActorID    uint   `gorm:"index"`
	ActorEmail string `gorm:"size:255"`
	EntityType string `gorm:"size:50;not null"` // "client", "user"
	EntityID   uint
	Action     string `gorm:"size:50;not null"` // "create", "update", "delete"
	Details    string `gorm:"type:text"`
	CreatedAt  time.Time
}
