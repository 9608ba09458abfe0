package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-crm/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AdminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

// Seed inserts the demo dataset. It is idempotent: the admin user is upserted by
// email and the sample records are only created on an empty organizations table.
func Seed(db *gorm.DB) error {
	admin, err := seedAdmin(db)
	if err != nil {
		return err
	}
	var orgs int64
	if err := db.Model(&models.Organization{}).Count(&orgs).Error; err != nil {
		return err
	}
	if orgs > 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return seedSamples(tx, admin)
	})
}

func seedAdmin(db *gorm.DB) (*models.User, error) {
	var admin models.User
	err := db.Where("email = ?", AdminEmail).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin = models.User{Email: AdminEmail, Name: "Admin User", Password: string(hash), Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	slog.Info("seeded admin user", "email", admin.Email)
	return &admin, nil
}

func seedSamples(tx *gorm.DB, admin *models.User) error {
	acme := models.Organization{Name: "Acme Corporation", Email: "contact@acme.com", Phone: "+1 234 567 890",
		Website: "https://acme.com", Industry: "Technology", Address: "123 Main St, New York, NY"}
	techStart := models.Organization{Name: "TechStart Inc", Email: "hello@techstart.io", Phone: "+1 555 123 456",
		Website: "https://techstart.io", Industry: "SaaS"}
	if err := tx.Create(&[]*models.Organization{&acme, &techStart}).Error; err != nil {
		return fmt.Errorf("seed organizations: %w", err)
	}

	john := models.Contact{Name: "John Smith", Email: "john@acme.com", Phone: "+1 234 567 891", JobTitle: "CEO", OrganizationID: &acme.ID}
	sarah := models.Contact{Name: "Sarah Johnson", Email: "sarah@techstart.io", Phone: "+1 555 123 457", JobTitle: "CTO", OrganizationID: &techStart.ID}
	mike := models.Contact{Name: "Mike Brown", Email: "mike@example.com", Phone: "+1 777 888 999", JobTitle: "Sales Manager"}
	if err := tx.Create(&[]*models.Contact{&john, &sarah, &mike}).Error; err != nil {
		return fmt.Errorf("seed contacts: %w", err)
	}

	products := []models.Product{
		{Name: "Enterprise CRM License", SKU: ptr("CRM-ENT-001"), Description: "Annual enterprise license for CRM software", Price: 9999, Quantity: 100, IsActive: true},
		{Name: "Professional Support", SKU: ptr("SUP-PRO-001"), Description: "24/7 professional support package", Price: 2499, Quantity: 50, IsActive: true},
		{Name: "Training Package", SKU: ptr("TRN-001"), Description: "Complete training for your team", Price: 1499, Quantity: 25, IsActive: true},
	}
	if err := tx.Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	now := time.Now()
	leads := []models.Lead{
		{Title: "Enterprise CRM Implementation", Description: "Full CRM implementation for Acme Corporation", Value: ptr(50000.0),
			Status: models.LeadQualified, Source: ptr(models.SourceWeb), ContactID: &john.ID, OrganizationID: &acme.ID, UserID: admin.ID},
		{Title: "SaaS Platform Integration", Description: "Integration services for TechStart", Value: ptr(25000.0),
			Status: models.LeadProposal, Source: ptr(models.SourceReferral), ContactID: &sarah.ID, OrganizationID: &techStart.ID, UserID: admin.ID},
		{Title: "Training Workshop", Description: "On-site training for sales team", Value: ptr(5000.0),
			Status: models.LeadNew, Source: ptr(models.SourceEmail), ContactID: &mike.ID, UserID: admin.ID},
		{Title: "Annual Support Contract", Description: "Renewal of annual support package", Value: ptr(12000.0),
			Status: models.LeadNegotiation, Source: ptr(models.SourcePhone), ContactID: &john.ID, OrganizationID: &acme.ID, UserID: admin.ID},
		{Title: "Pilot Deployment", Description: "Pilot closed last month", Value: ptr(8000.0),
			Status: models.LeadWon, Source: ptr(models.SourceWeb), ContactID: &sarah.ID, OrganizationID: &techStart.ID, UserID: admin.ID,
			CreatedAt: now.AddDate(0, -1, 0)},
	}
	if err := tx.Create(&leads).Error; err != nil {
		return fmt.Errorf("seed leads: %w", err)
	}

	done := now.Add(-2 * time.Hour)
	activities := []models.Activity{
		{Type: models.ActivityCall, Title: "Discovery call with John", LeadID: &leads[0].ID, ContactID: &john.ID, UserID: admin.ID,
			Completed: true, CompletedAt: &done},
		{Type: models.ActivityMeeting, Title: "Proposal review", LeadID: &leads[1].ID, ContactID: &sarah.ID, UserID: admin.ID,
			DueDate: ptr(now.AddDate(0, 0, 3))},
		{Type: models.ActivityTask, Title: "Prepare training agenda", LeadID: &leads[2].ID, UserID: admin.ID,
			DueDate: ptr(now.AddDate(0, 0, 7))},
	}
	if err := tx.Create(&activities).Error; err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}

	emails := []models.Email{
		{From: "john@acme.com", To: admin.Email, Subject: "Implementation timeline", Body: "Can we review the rollout plan next week?", Folder: models.FolderInbox, UserID: admin.ID},
		{From: "sarah@techstart.io", To: admin.Email, Subject: "Re: Integration proposal", Body: "Thanks, the team is reviewing it.", Folder: models.FolderInbox, UserID: admin.ID, Starred: true},
	}
	if err := tx.Create(&emails).Error; err != nil {
		return fmt.Errorf("seed emails: %w", err)
	}
	slog.Info("seeded sample data", "leads", len(leads), "contacts", 3, "products", len(products))
	return nil
}

func ptr[T any](v T) *T { return &v }
