package services

import (
	"context"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type OrganizationService struct {
	db    *gorm.DB
	views *cache.Views
}

func NewOrganizationService(db *gorm.DB, views *cache.Views) *OrganizationService {
	return &OrganizationService{db: db, views: views}
}

type OrganizationInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Industry string `json:"industry"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

type OrganizationPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Website  *string `json:"website"`
	Industry *string `json:"industry"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
}

const organizationCounts = "organizations.*, " +
	"(SELECT COUNT(*) FROM contacts WHERE contacts.organization_id = organizations.id) AS contact_count, " +
	"(SELECT COUNT(*) FROM leads WHERE leads.organization_id = organizations.id) AS lead_count"

func (s *OrganizationService) List(ctx context.Context, query string) ([]models.Organization, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Organization{}).Select(organizationCounts)
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(organizations.name) LIKE ? OR LOWER(organizations.industry) LIKE ?", p, p)
	}
	var orgs []models.Organization
	err := q.Order("organizations.created_at DESC").Find(&orgs).Error
	return orgs, err
}

func (s *OrganizationService) Get(ctx context.Context, id uint) (*models.Organization, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var o models.Organization
	err := s.db.WithContext(ctx).Model(&models.Organization{}).Select(organizationCounts).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Where("organizations.id = ?", id).First(&o).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func validateOrganization(name, email string) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.Email("email", email, v)
	return check(v)
}

func (s *OrganizationService) Create(ctx context.Context, in OrganizationInput) (*models.Organization, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := validateOrganization(in.Name, in.Email); err != nil {
		return nil, err
	}
	o := models.Organization{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Website:  in.Website,
		Industry: in.Industry,
		Address:  in.Address,
		Notes:    in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return &o, nil
}

func (s *OrganizationService) Update(ctx context.Context, id uint, p OrganizationPatch) (*models.Organization, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var o models.Organization
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	name, email := o.Name, o.Email
	if p.Name != nil {
		name = *p.Name
	}
	if p.Email != nil {
		email = *p.Email
	}
	if err := validateOrganization(name, email); err != nil {
		return nil, err
	}
	updates := map[string]any{"name": name, "email": email}
	for col, val := range map[string]*string{
		"phone": p.Phone, "website": p.Website, "industry": p.Industry, "address": p.Address, "notes": p.Notes,
	} {
		if val != nil {
			updates[col] = *val
		}
	}
	if err := s.db.WithContext(ctx).Model(&o).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	return s.Get(ctx, id)
}

func (s *OrganizationService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Organization{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *OrganizationService) Options(ctx context.Context) ([]models.Option, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return cache.Get(ctx, s.views, cache.TagOrganizations+":options", func(ctx context.Context) ([]models.Option, error) {
		var opts []models.Option
		err := s.db.WithContext(ctx).Model(&models.Organization{}).
			Select("id, name AS label").Order("name ASC").Scan(&opts).Error
		return opts, err
	})
}

func (s *OrganizationService) invalidate() {
	s.views.Invalidate(cache.TagOrganizations, cache.TagContacts, cache.TagLeads)
}
