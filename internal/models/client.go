package models

import "time"

// Client is a customer owned by a commercial user.
// Implements the Ownable interface for ownership-based authorization.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is stamped by the services from their clock.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Phone   string `gorm:"size:20" json:"phone,omitempty"`
	Company string `gorm:"size:255" json:"company,omitempty"`

	SalesContactID uint  `gorm:"index;not null" json:"sales_contact_id"`
	SalesContact   *User `gorm:"foreignKey:SalesContactID;constraint:OnDelete:RESTRICT" json:"sales_contact,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Client) GetUserID() uint {
	return c.SalesContactID
}
