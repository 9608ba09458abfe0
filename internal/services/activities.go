package services

import (
	"context"
	"time"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ActivityService struct {
	db    *gorm.DB
	views *cache.Views
	now   func() time.Time
}

func NewActivityService(db *gorm.DB, views *cache.Views) *ActivityService {
	return &ActivityService{db: db, views: views, now: time.Now}
}

type ActivityInput struct {
	Type        models.ActivityType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     *time.Time          `json:"due_date"`
	LeadID      *uint               `json:"lead_id"`
	ContactID   *uint               `json:"contact_id"`
}

// ActivityPatch updates only the non-nil fields. A zero due date or id clears it.
type ActivityPatch struct {
	Type        *models.ActivityType `json:"type"`
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	DueDate     *time.Time           `json:"due_date"`
	Completed   *bool                `json:"completed"`
	LeadID      *uint                `json:"lead_id"`
	ContactID   *uint                `json:"contact_id"`
}

// List returns open activities first, newest first within each group.
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var acts []models.Activity
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Lead").Preload("Contact").
		Order("completed ASC").Order("created_at DESC").
		Find(&acts).Error
	return acts, err
}

func (s *ActivityService) Get(ctx context.Context, id uint) (*models.Activity, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var a models.Activity
	if err := s.db.WithContext(ctx).Preload("User").Preload("Lead").Preload("Contact").First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func validateActivity(t models.ActivityType, title string) error {
	v := validation.Violations{}
	validation.OneOf("type", t, models.ActivityTypes, v)
	validation.Required("title", title, v)
	return check(v)
}

// Create stores an open activity owned by the signed-in user.
func (s *ActivityService) Create(ctx context.Context, in ActivityInput) (*models.Activity, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateActivity(in.Type, in.Title); err != nil {
		return nil, err
	}
	a := models.Activity{
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		UserID:      uid,
		LeadID:      optionalID(in.LeadID),
		ContactID:   optionalID(in.ContactID),
	}
	if a.DueDate != nil && a.DueDate.IsZero() {
		a.DueDate = nil
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return &a, nil
}

// Update applies a partial update. Marking complete stamps completed_at,
// reopening clears it.
func (s *ActivityService) Update(ctx context.Context, id uint, p ActivityPatch) (*models.Activity, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var a models.Activity
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	typ, title := a.Type, a.Title
	if p.Type != nil {
		typ = *p.Type
	}
	if p.Title != nil {
		title = *p.Title
	}
	if err := validateActivity(typ, title); err != nil {
		return nil, err
	}

	updates := map[string]any{"type": typ, "title": title}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = *p.DueDate
		}
	}
	if p.Completed != nil {
		switch {
		case *p.Completed && !a.Completed:
			updates["completed"] = true
			updates["completed_at"] = s.now()
		case !*p.Completed:
			updates["completed"] = false
			updates["completed_at"] = nil
		}
	}
	if p.LeadID != nil {
		updates["lead_id"] = optionalID(p.LeadID)
	}
	if p.ContactID != nil {
		updates["contact_id"] = optionalID(p.ContactID)
	}
	if err := s.db.WithContext(ctx).Model(&a).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return s.Get(ctx, id)
}

// ToggleComplete flips completed and its timestamp in one conditional UPDATE so
// concurrent toggles never leave the two columns disagreeing.
func (s *ActivityService) ToggleComplete(ctx context.Context, id uint) (*models.Activity, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Activity{}).Where("id = ?", id).Updates(map[string]any{
		"completed":    gorm.Expr("NOT completed"),
		"completed_at": gorm.Expr("CASE WHEN completed THEN NULL ELSE ? END", now),
		"updated_at":   now,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	s.invalidate()
	return s.Get(ctx, id)
}

func (s *ActivityService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Activity{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *ActivityService) invalidate() {
	s.views.Invalidate(cache.TagActivities, cache.TagDashboard, cache.TagLeads)
}
