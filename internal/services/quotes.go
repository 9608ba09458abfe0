package services

import (
	"context"
	"time"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

// quoteNumberAttempts bounds retries when a generated number collides.
const quoteNumberAttempts = 3

type QuoteService struct {
	db    *gorm.DB
	views *cache.Views
	now   func() time.Time
}

func NewQuoteService(db *gorm.DB, views *cache.Views) *QuoteService {
	return &QuoteService{db: db, views: views, now: time.Now}
}

type QuoteInput struct {
	Subject string             `json:"subject"`
	Total   float64            `json:"total"`
	Status  models.QuoteStatus `json:"status"`
	LeadID  *uint              `json:"lead_id"`
}

// List returns quotes newest first with lead title and author.
func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var quotes []models.Quote
	err := s.db.WithContext(ctx).
		Preload("Lead", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var q models.Quote
	if err := s.db.WithContext(ctx).Preload("Lead").Preload("User").First(&q, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// Create stores a quote with a freshly generated number.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.QuoteDraft
	}
	v := validation.Violations{}
	validation.Required("subject", in.Subject, v)
	validation.OneOf("status", in.Status, models.QuoteStatuses, v)
	if err := check(v); err != nil {
		return nil, err
	}
	q := models.Quote{
		Subject: in.Subject,
		Total:   in.Total,
		Status:  in.Status,
		UserID:  uid,
		LeadID:  optionalID(in.LeadID),
	}
	for attempt := 1; ; attempt++ {
		q.ID = 0
		q.QuoteNumber = models.GenerateQuoteNumber(s.now())
		err = s.db.WithContext(ctx).Create(&q).Error
		if err == nil {
			break
		}
		if !isDuplicate(err) || attempt == quoteNumberAttempts {
			return nil, err
		}
	}
	s.invalidate()
	return &q, nil
}

func (s *QuoteService) UpdateStatus(ctx context.Context, id uint, status models.QuoteStatus) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	v := validation.Violations{}
	validation.OneOf("status", status, models.QuoteStatuses, v)
	if err := check(v); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Quote{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *QuoteService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Quote{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *QuoteService) invalidate() {
	s.views.Invalidate(cache.TagQuotes)
}
