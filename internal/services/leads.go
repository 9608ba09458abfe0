package services

import (
	"context"
	"time"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type LeadService struct {
	db    *gorm.DB
	views *cache.Views
}

func NewLeadService(db *gorm.DB, views *cache.Views) *LeadService {
	return &LeadService{db: db, views: views}
}

type LeadInput struct {
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Value             *float64           `json:"value"`
	Status            models.LeadStatus  `json:"status"`
	Source            *models.LeadSource `json:"source"`
	ExpectedCloseDate *time.Time         `json:"expected_close_date"`
	ContactID         *uint              `json:"contact_id"`
	OrganizationID    *uint              `json:"organization_id"`
}

// LeadPatch updates only the non-nil fields. A pointer to an empty source,
// a zero date or a zero id clears that column; ClearValue nulls the value.
type LeadPatch struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Value             *float64           `json:"value"`
	ClearValue        bool               `json:"clear_value"`
	Status            *models.LeadStatus `json:"status"`
	Source            *models.LeadSource `json:"source"`
	ExpectedCloseDate *time.Time         `json:"expected_close_date"`
	ContactID         *uint              `json:"contact_id"`
	OrganizationID    *uint              `json:"organization_id"`
}

const leadActivityCount = "leads.*, (SELECT COUNT(*) FROM activities WHERE activities.lead_id = leads.id) AS activity_count"

// List returns leads newest first. query matches title, contact or organization name.
func (s *LeadService) List(ctx context.Context, query string) ([]models.Lead, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Lead{}).
		Select(leadActivityCount).
		Preload("Contact").Preload("Organization").Preload("User")
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(leads.title) LIKE ? OR leads.contact_id IN (SELECT id FROM contacts WHERE LOWER(name) LIKE ?) OR leads.organization_id IN (SELECT id FROM organizations WHERE LOWER(name) LIKE ?)", p, p, p)
	}
	var leads []models.Lead
	if err := q.Order("leads.created_at DESC").Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// Get loads one lead with its relations and latest ten activities.
func (s *LeadService) Get(ctx context.Context, id uint) (*models.Lead, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var lead models.Lead
	err := s.db.WithContext(ctx).
		Preload("Contact").Preload("Organization").Preload("User").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(10)
		}).
		Preload("Activities.User").
		First(&lead, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}

func validateLead(title string, status models.LeadStatus, source *models.LeadSource) error {
	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.OneOf("status", status, models.LeadStatuses, v)
	if source != nil && *source != "" {
		validation.OneOf("source", *source, models.LeadSources, v)
	}
	return check(v)
}

// Create stores a lead owned by the signed-in user.
func (s *LeadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.LeadNew
	}
	if err := validateLead(in.Title, in.Status, in.Source); err != nil {
		return nil, err
	}
	lead := models.Lead{
		Title:             in.Title,
		Description:       in.Description,
		Value:             in.Value,
		Status:            in.Status,
		Source:            in.Source,
		ExpectedCloseDate: in.ExpectedCloseDate,
		UserID:            uid,
		ContactID:         optionalID(in.ContactID),
		OrganizationID:    optionalID(in.OrganizationID),
	}
	if lead.Source != nil && *lead.Source == "" {
		lead.Source = nil
	}
	if lead.ExpectedCloseDate != nil && lead.ExpectedCloseDate.IsZero() {
		lead.ExpectedCloseDate = nil
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return &lead, nil
}

// Update applies a partial update.
func (s *LeadService) Update(ctx context.Context, id uint, p LeadPatch) (*models.Lead, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		return nil, notFound(err)
	}

	title, status := lead.Title, lead.Status
	if p.Title != nil {
		title = *p.Title
	}
	if p.Status != nil {
		status = *p.Status
	}
	if err := validateLead(title, status, p.Source); err != nil {
		return nil, err
	}

	updates := map[string]any{"title": title, "status": status}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	switch {
	case p.ClearValue:
		updates["value"] = nil
	case p.Value != nil:
		updates["value"] = *p.Value
	}
	if p.Source != nil {
		if *p.Source == "" {
			updates["source"] = nil
		} else {
			updates["source"] = *p.Source
		}
	}
	if p.ExpectedCloseDate != nil {
		if p.ExpectedCloseDate.IsZero() {
			updates["expected_close_date"] = nil
		} else {
			updates["expected_close_date"] = *p.ExpectedCloseDate
		}
	}
	if p.ContactID != nil {
		updates["contact_id"] = optionalID(p.ContactID)
	}
	if p.OrganizationID != nil {
		updates["organization_id"] = optionalID(p.OrganizationID)
	}
	if err := s.db.WithContext(ctx).Model(&lead).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return s.Get(ctx, id)
}

// UpdateStatus moves a lead to another pipeline column. Any transition is allowed.
func (s *LeadService) UpdateStatus(ctx context.Context, id uint, status models.LeadStatus) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	v := validation.Violations{}
	validation.OneOf("status", status, models.LeadStatuses, v)
	if err := check(v); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

// UpdateLeadStatus lets the service act as the pipeline's status updater.
func (s *LeadService) UpdateLeadStatus(ctx context.Context, id uint, status models.LeadStatus) error {
	return s.UpdateStatus(ctx, id, status)
}

func (s *LeadService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

// Options lists leads for select inputs, ordered by title.
func (s *LeadService) Options(ctx context.Context) ([]models.Option, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return cache.Get(ctx, s.views, cache.TagLeads+":options", func(ctx context.Context) ([]models.Option, error) {
		var opts []models.Option
		err := s.db.WithContext(ctx).Model(&models.Lead{}).
			Select("id, title AS label").Order("title ASC").Scan(&opts).Error
		return opts, err
	})
}

func (s *LeadService) invalidate() {
	s.views.Invalidate(cache.TagLeads, cache.TagDashboard, cache.TagQuotes)
}
