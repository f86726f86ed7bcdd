package models

import "time"

// Event is scheduled against a signed contract and staffed by at most one
// support user.
type Event struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255" json:"name"`
	ContractID uint      `gorm:"index;not null" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:RESTRICT" json:"contract,omitempty"`

	// SupportContactID is nil until management assigns a support user.
	SupportContactID *uint `gorm:"index" json:"support_contact_id,omitempty"`
	SupportContact   *User `gorm:"foreignKey:SupportContactID;constraint:OnDelete:RESTRICT" json:"support_contact,omitempty"`

	Start     time.Time `gorm:"column:starts_at;not null" json:"start"`
	End       time.Time `gorm:"column:ends_at;not null" json:"end"`
	Location  string    `gorm:"size:255" json:"location"`
	Attendees int       `gorm:"not null;default:0" json:"attendees"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
}

// AssignedTo reports whether userID is the event's support contact.
func (e *Event) AssignedTo(userID uint) bool {
	return e.SupportContactID != nil && *e.SupportContactID == userID
}
