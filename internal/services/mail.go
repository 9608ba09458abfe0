package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/mailer"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type MailService struct {
	db    *gorm.DB
	relay mailer.Relay
	from  string
	views *cache.Views
}

// NewMailService builds the mailbox service. A nil relay disables delivery;
// from is the envelope sender used when the user has no address.
func NewMailService(db *gorm.DB, relay mailer.Relay, from string) *MailService {
	if relay == nil {
		relay = mailer.Noop{}
	}
	return &MailService{db: db, relay: relay, from: from}
}

type SendInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResult reports delivery. A relay failure is a result, not an error.
type SendResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Email   *models.Email `json:"email,omitempty"`
}

// List returns the signed-in user's messages in folder, newest first.
// query matches subject or sender.
func (s *MailService) List(ctx context.Context, folder models.Folder, query string) ([]models.Email, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	folder = models.ParseFolder(string(folder))
	q := s.db.WithContext(ctx).Where("user_id = ? AND folder = ?", uid, folder)
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(subject) LIKE ? OR LOWER(from_address) LIKE ?", p, p)
	}
	var emails []models.Email
	err = q.Order("created_at DESC").Find(&emails).Error
	return emails, err
}

// Unread counts unread inbox messages for the sidebar badge.
func (s *MailService) Unread(ctx context.Context) (int64, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND folder = ? AND is_read = ?", uid, models.FolderInbox, false).Count(&n).Error
	return n, err
}

// Get loads one message from the signed-in user's mailbox.
func (s *MailService) Get(ctx context.Context, id uint) (*models.Email, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var e models.Email
	if err := s.db.WithContext(ctx).Where("user_id = ?", uid).First(&e, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// Send relays the message when delivery is enabled, then stores the sent copy.
// The copy is only written after a successful relay.
func (s *MailService) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("to", in.To, v)
	validation.Email("to", in.To, v)
	validation.Required("subject", in.Subject, v)
	validation.Required("body", in.Body, v)
	if err := check(v); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "email").First(&user, uid).Error; err != nil {
		return nil, notFound(err)
	}
	from := user.Email
	if from == "" {
		from = s.from
	}

	if s.relay.Enabled() {
		sender := s.from
		if sender == "" {
			sender = from
		}
		msg := mailer.Message{From: sender, To: in.To, Subject: in.Subject, Body: in.Body}
		if err := s.relay.Send(ctx, msg); err != nil {
			slog.Warn("mail relay failed", "to", in.To, "error", err)
			return &SendResult{Success: false, Error: err.Error()}, nil
		}
	}

	sent := models.Email{
		From:    from,
		To:      in.To,
		Subject: in.Subject,
		Body:    in.Body,
		Folder:  models.FolderSent,
		Read:    true,
		UserID:  uid,
	}
	if err := s.db.WithContext(ctx).Create(&sent).Error; err != nil {
		return nil, fmt.Errorf("store sent copy: %w", err)
	}
	s.invalidate()
	return &SendResult{Success: true, Email: &sent}, nil
}

// Delete moves a message to trash, or removes it for good when already there.
// A missing id is a no-op.
func (s *MailService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	var e models.Email
	err := s.db.WithContext(ctx).Select("id", "folder").First(&e, id).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil
		}
		return err
	}
	if e.Folder == models.FolderTrash {
		err = s.db.WithContext(ctx).Delete(&models.Email{}, id).Error
	} else {
		err = s.db.WithContext(ctx).Model(&models.Email{}).Where("id = ?", id).Update("folder", models.FolderTrash).Error
	}
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Archive moves a message to the archive folder.
func (s *MailService) Archive(ctx context.Context, id uint) error {
	return s.set(ctx, id, "folder", models.FolderArchive)
}

// MarkRead flags a message as read. Any signed-in user may do so.
func (s *MailService) MarkRead(ctx context.Context, id uint) error {
	return s.set(ctx, id, "is_read", true)
}

// ToggleStar sets the starred flag to the given value.
func (s *MailService) ToggleStar(ctx context.Context, id uint, starred bool) error {
	return s.set(ctx, id, "starred", starred)
}

func (s *MailService) set(ctx context.Context, id uint, column string, value any) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Email{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *MailService) invalidate() {
	s.views.Invalidate(cache.TagMail)
}
