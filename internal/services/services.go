// Package services holds the CRM business operations. Every exported operation
// except registration and login requires a signed-in user on the context.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError carries field violations; errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields validation.Violations
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// check returns a *ValidationError when v holds violations.
func check(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

// Services bundles every service over one database handle and view cache.
type Services struct {
	Users         *UserService
	Organizations *OrganizationService
	Contacts      *ContactService
	Leads         *LeadService
	Activities    *ActivityService
	Products      *ProductService
	Quotes        *QuoteService
	Mail          *MailService
	Dashboard     *DashboardService
}

// New wires the services. views may be nil to disable caching.
func New(db *gorm.DB, views *cache.Views, mail *MailService) *Services {
	if mail == nil {
		mail = NewMailService(db, nil, "")
	}
	mail.views = views
	return &Services{
		Users:         NewUserService(db),
		Organizations: NewOrganizationService(db, views),
		Contacts:      NewContactService(db, views),
		Leads:         NewLeadService(db, views),
		Activities:    NewActivityService(db, views),
		Products:      NewProductService(db, views),
		Quotes:        NewQuoteService(db, views),
		Mail:          mail,
		Dashboard:     NewDashboardService(db, views),
	}
}

// requireUser returns the signed-in user id or ErrUnauthorized.
func requireUser(ctx context.Context) (uint, error) {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}
	return uid, nil
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicate detects unique violations, translated or not.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "UNIQUE")
}

// optionalID turns a zero id into NULL.
func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// likePattern builds a case-insensitive LIKE pattern, "" for an empty query.
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return "%" + strings.ToLower(q) + "%"
}
