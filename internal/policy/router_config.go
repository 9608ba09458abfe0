// Package policy wires the services and handlers behind the router. Access
// rules are deliberately flat: any signed-in user may read or change any
// record, and the only check is the session itself.
package policy

import (
	"time"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/handlers"
	"github.com/diewo77/go-crm/internal/mailer"
	"github.com/diewo77/go-crm/internal/services"
	"gorm.io/gorm"
)

// ViewTTL bounds how long cached counts and option lists are served.
const ViewTTL = 30 * time.Second

// RouterConfig holds the configured handlers for the application.
type RouterConfig struct {
	Services *services.Services
	Views    *cache.Views

	AuthHandler         *handlers.AuthHandler
	DashboardHandler    *handlers.DashboardHandler
	LeadHandler         *handlers.LeadHandler
	ContactHandler      *handlers.ContactHandler
	OrganizationHandler *handlers.OrganizationHandler
	ActivityHandler     *handlers.ActivityHandler
	ProductHandler      *handlers.ProductHandler
	QuoteHandler        *handlers.QuoteHandler
	MailHandler         *handlers.MailHandler
	SettingsHandler     *handlers.SettingsHandler
}

// NewRouterConfig builds the services over db and the handlers over them.
// A nil relay is built from cfg.
func NewRouterConfig(db *gorm.DB, cfg config.MailConfig, relay mailer.Relay) *RouterConfig {
	if relay == nil {
		relay = mailer.New(cfg)
	}
	views := cache.New(ViewTTL)
	svc := services.New(db, views, services.NewMailService(db, relay, cfg.From))

	return &RouterConfig{
		Services:            svc,
		Views:               views,
		AuthHandler:         handlers.NewAuthHandler(svc.Users),
		DashboardHandler:    handlers.NewDashboardHandler(svc),
		LeadHandler:         handlers.NewLeadHandler(svc),
		ContactHandler:      handlers.NewContactHandler(svc),
		OrganizationHandler: handlers.NewOrganizationHandler(svc),
		ActivityHandler:     handlers.NewActivityHandler(svc),
		ProductHandler:      handlers.NewProductHandler(svc),
		QuoteHandler:        handlers.NewQuoteHandler(svc),
		MailHandler:         handlers.NewMailHandler(svc),
		SettingsHandler:     handlers.NewSettingsHandler(svc.Users),
	}
}
