package models

import (
	"strings"
	"time"
)

// Role is the department a user belongs to. It decides which operations the
// user may perform.
type Role string

const (
	RoleCommercial Role = "commercial"
	RoleSupport    Role = "support"
	RoleGestion    Role = "gestion"
)

// Roles lists every known role.
var Roles = []Role{RoleCommercial, RoleSupport, RoleGestion}

// ParseRole normalizes s (trim + lower case) and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// User represents a staff member. Users are created by management and never
// self-register.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role      Role      `gorm:"size:20;not null;index" json:"role"`
}
