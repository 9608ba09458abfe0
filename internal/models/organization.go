package models

import "time"

type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Website   string    `gorm:"size:255" json:"website,omitempty"`
	Industry  string    `gorm:"size:100" json:"industry,omitempty"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`

	Contacts []Contact `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Leads    []Lead    `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	// Filled by list queries.
	ContactCount int64 `gorm:"->;-:migration" json:"contact_count"`
	LeadCount    int64 `gorm:"->;-:migration" json:"lead_count"`
}
