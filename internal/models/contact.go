package models

import "time"

type Contact struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Name           string        `gorm:"size:255;not null" json:"name"`
	Email          string        `gorm:"size:255" json:"email,omitempty"`
	Phone          string        `gorm:"size:50" json:"phone,omitempty"`
	JobTitle       string        `gorm:"size:150" json:"job_title,omitempty"`
	Address        string        `gorm:"type:text" json:"address,omitempty"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`
	OrganizationID *uint         `gorm:"index" json:"organization_id"`
	Organization   *Organization `json:"organization,omitempty"`

	Leads      []Lead     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Activities []Activity `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	LeadCount     int64 `gorm:"->;-:migration" json:"lead_count"`
	ActivityCount int64 `gorm:"->;-:migration" json:"activity_count"`
}

// Option is the id/label pair used by select inputs.
type Option struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}
