package models

import "time"

// Contract belongs to a client and to the sales contact that created it.
// The sales contact is stored independently so a contract can be transferred
// without transferring its client.
type Contract struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`

	SalesContactID uint  `gorm:"index;not null" json:"sales_contact_id"`
	SalesContact   *User `gorm:"foreignKey:SalesContactID;constraint:OnDelete:RESTRICT" json:"sales_contact,omitempty"`

	AmountTotal     float64 `gorm:"not null" json:"amount_total"`
	AmountRemaining float64 `gorm:"not null" json:"amount_remaining"`

	// Signed and SignedAt always agree: Signed == (SignedAt != nil).
	Signed   bool       `gorm:"not null;default:false;index" json:"signed"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Contract) GetUserID() uint {
	return c.SalesContactID
}

// SetSigned flips the signed state, stamping or clearing SignedAt.
// Setting signed=true on an already signed contract re-stamps SignedAt.
func (c *Contract) SetSigned(signed bool, now time.Time) {
	c.Signed = signed
	if signed {
		t := now
		c.SignedAt = &t
		return
	}
	c.SignedAt = nil
}

// SignatureConsistent reports whether Signed and SignedAt agree.
func (c *Contract) SignatureConsistent() bool {
	return c.Signed == (c.SignedAt != nil)
}
