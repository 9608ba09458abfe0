package models

import "time"

type ActivityType string

const (
	ActivityCall    ActivityType = "CALL"
	ActivityEmail   ActivityType = "EMAIL"
	ActivityMeeting ActivityType = "MEETING"
	ActivityNote    ActivityType = "NOTE"
	ActivityTask    ActivityType = "TASK"
)

var ActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote, ActivityTask}

func (t ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Activity is a call, meeting, task... optionally tied to a lead and/or contact.
// CompletedAt is non-nil exactly when Completed is true.
type Activity struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Type        ActivityType `gorm:"size:20;not null" json:"type"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	DueDate     *time.Time   `json:"due_date"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time   `json:"completed_at"`
	UserID      uint         `gorm:"index;not null" json:"user_id"`
	User        *User        `json:"user,omitempty"`
	LeadID      *uint        `gorm:"index" json:"lead_id"`
	Lead        *Lead        `json:"lead,omitempty"`
	ContactID   *uint        `gorm:"index" json:"contact_id"`
	Contact     *Contact     `json:"contact,omitempty"`
}

// Consistent reports whether the completed flag and timestamp agree.
func (a Activity) Consistent() bool {
	return a.Completed == (a.CompletedAt != nil)
}
