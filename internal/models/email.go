package models

import "time"

type Folder string

const (
	FolderInbox   Folder = "inbox"
	FolderSent    Folder = "sent"
	FolderTrash   Folder = "trash"
	FolderArchive Folder = "archive"
)

var Folders = []Folder{FolderInbox, FolderSent, FolderTrash, FolderArchive}

// ParseFolder maps unknown or empty names to the inbox.
func ParseFolder(s string) Folder {
	for _, f := range Folders {
		if string(f) == s {
			return f
		}
	}
	return FolderInbox
}

// Email is one message in a user's mailbox.
type Email struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	From      string    `gorm:"column:from_address;size:255;not null" json:"from"`
	To        string    `gorm:"column:to_address;size:255;not null" json:"to"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	Folder    Folder    `gorm:"size:20;not null;default:inbox;index:idx_emails_user_folder,priority:2" json:"folder"`
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	Starred   bool      `gorm:"not null;default:false" json:"starred"`
	UserID    uint      `gorm:"not null;index:idx_emails_user_folder,priority:1" json:"user_id"`
	User      *User     `json:"-"`
}
