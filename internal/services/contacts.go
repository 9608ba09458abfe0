package services

import (
	"context"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ContactService struct {
	db    *gorm.DB
	views *cache.Views
}

func NewContactService(db *gorm.DB, views *cache.Views) *ContactService {
	return &ContactService{db: db, views: views}
}

type ContactInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	JobTitle       string `json:"job_title"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
	OrganizationID *uint  `json:"organization_id"`
}

type ContactPatch struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	JobTitle       *string `json:"job_title"`
	Address        *string `json:"address"`
	Notes          *string `json:"notes"`
	OrganizationID *uint   `json:"organization_id"`
}

const contactCounts = "contacts.*, " +
	"(SELECT COUNT(*) FROM leads WHERE leads.contact_id = contacts.id) AS lead_count, " +
	"(SELECT COUNT(*) FROM activities WHERE activities.contact_id = contacts.id) AS activity_count"

// List returns contacts newest first; query matches name, email or job title.
func (s *ContactService) List(ctx context.Context, query string) ([]models.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Contact{}).Select(contactCounts).Preload("Organization")
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(contacts.name) LIKE ? OR LOWER(contacts.email) LIKE ? OR LOWER(contacts.job_title) LIKE ?", p, p, p)
	}
	var contacts []models.Contact
	err := q.Order("contacts.created_at DESC").Find(&contacts).Error
	return contacts, err
}

func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var c models.Contact
	err := s.db.WithContext(ctx).Model(&models.Contact{}).Select(contactCounts).
		Preload("Organization").Where("contacts.id = ?", id).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func validateContact(name, email string) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.Email("email", email, v)
	return check(v)
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (*models.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := validateContact(in.Name, in.Email); err != nil {
		return nil, err
	}
	c := models.Contact{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		JobTitle:       in.JobTitle,
		Address:        in.Address,
		Notes:          in.Notes,
		OrganizationID: optionalID(in.OrganizationID),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return &c, nil
}

func (s *ContactService) Update(ctx context.Context, id uint, p ContactPatch) (*models.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var c models.Contact
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	name, email := c.Name, c.Email
	if p.Name != nil {
		name = *p.Name
	}
	if p.Email != nil {
		email = *p.Email
	}
	if err := validateContact(name, email); err != nil {
		return nil, err
	}
	updates := map[string]any{"name": name, "email": email}
	for col, val := range map[string]*string{"phone": p.Phone, "job_title": p.JobTitle, "address": p.Address, "notes": p.Notes} {
		if val != nil {
			updates[col] = *val
		}
	}
	if p.OrganizationID != nil {
		updates["organization_id"] = optionalID(p.OrganizationID)
	}
	if err := s.db.WithContext(ctx).Model(&c).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return s.Get(ctx, id)
}

// Delete removes a contact. Leads and activities keep their rows with a null link.
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *ContactService) Options(ctx context.Context) ([]models.Option, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return cache.Get(ctx, s.views, cache.TagContacts+":options", func(ctx context.Context) ([]models.Option, error) {
		var opts []models.Option
		err := s.db.WithContext(ctx).Model(&models.Contact{}).
			Select("id, name AS label").Order("name ASC").Scan(&opts).Error
		return opts, err
	})
}

func (s *ContactService) invalidate() {
	s.views.Invalidate(cache.TagContacts, cache.TagDashboard, cache.TagLeads, cache.TagActivities)
}
