package models

import "time"

type LeadStatus string

const (
	LeadNew         LeadStatus = "NEW"
	LeadContacted   LeadStatus = "CONTACTED"
	LeadQualified   LeadStatus = "QUALIFIED"
	LeadProposal    LeadStatus = "PROPOSAL"
	LeadNegotiation LeadStatus = "NEGOTIATION"
	LeadWon         LeadStatus = "WON"
	LeadLost        LeadStatus = "LOST"
)

// LeadStatuses lists every status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadNew, LeadContacted, LeadQualified, LeadProposal, LeadNegotiation, LeadWon, LeadLost,
}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PipelineIndex is the position on the progress bar, NEW=0 through WON=5.
// LOST is off the bar and returns -1.
func (s LeadStatus) PipelineIndex() int {
	if s == LeadLost {
		return -1
	}
	for i, v := range LeadStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether the lead left the pipeline.
func (s LeadStatus) Terminal() bool { return s == LeadWon || s == LeadLost }

type LeadSource string

const (
	SourceWeb           LeadSource = "WEB"
	SourcePhone         LeadSource = "PHONE"
	SourceEmail         LeadSource = "EMAIL"
	SourceReferral      LeadSource = "REFERRAL"
	SourceSocialMedia   LeadSource = "SOCIAL_MEDIA"
	SourceAdvertisement LeadSource = "ADVERTISEMENT"
	SourceOther         LeadSource = "OTHER"
)

var LeadSources = []LeadSource{
	SourceWeb, SourcePhone, SourceEmail, SourceReferral, SourceSocialMedia, SourceAdvertisement, SourceOther,
}

func (s LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if v == s {
			return true
		}
	}
	return false
}

type Lead struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Title             string        `gorm:"size:255;not null" json:"title"`
	Description       string        `gorm:"type:text" json:"description,omitempty"`
	Value             *float64      `gorm:"type:decimal(15,2)" json:"value"`
	Status            LeadStatus    `gorm:"size:20;not null;default:NEW;index" json:"status"`
	Source            *LeadSource   `gorm:"size:20" json:"source"`
	ExpectedCloseDate *time.Time    `json:"expected_close_date"`
	UserID            uint          `gorm:"index;not null" json:"user_id"`
	User              *User         `json:"user,omitempty"`
	ContactID         *uint         `gorm:"index" json:"contact_id"`
	Contact           *Contact      `json:"contact,omitempty"`
	OrganizationID    *uint         `gorm:"index" json:"organization_id"`
	Organization      *Organization `json:"organization,omitempty"`
	Activities        []Activity    `gorm:"constraint:OnDelete:SET NULL" json:"activities,omitempty"`

	ActivityCount int64 `gorm:"->;-:migration" json:"activity_count"`
}

// Amount returns the lead value, treating a missing value as zero.
func (l Lead) Amount() float64 {
	if l.Value == nil {
		return 0
	}
	return *l.Value
}
