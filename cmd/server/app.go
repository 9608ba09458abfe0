package main

import (
	"net/http"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/handlers"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/view"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	users := routerCfg.Services.Users
	view.SetUserResolver(func(r *http.Request) string {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			return ""
		}
		return users.DisplayName(r.Context(), uid)
	})
	app.setupRoutes()
	app.handler = middleware.Chain(app.mux,
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		middleware.Prefs,
		auth.Middleware,
		middleware.Gate,
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes. Session checks happen in
// middleware.Gate for pages and in the services for every operation.
func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("POST /api/register", ah.RegisterAPI)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /register", ah.Register)
	a.mux.HandleFunc("POST /register", ah.Register)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	a.mux.HandleFunc("GET /{$}", a.home)
	a.mux.HandleFunc("GET /dashboard", a.routerCfg.DashboardHandler.Show)

	lh := a.routerCfg.LeadHandler
	a.mux.HandleFunc("GET /leads", lh.List)
	a.mux.HandleFunc("GET /leads/new", lh.New)
	a.mux.HandleFunc("POST /leads", lh.Create)
	a.mux.HandleFunc("POST /leads/board/move", lh.Move)
	a.mux.HandleFunc("GET /leads/{id}", lh.View)
	a.mux.HandleFunc("GET /leads/{id}/edit", lh.Edit)
	a.mux.HandleFunc("POST /leads/{id}", lh.Update)
	a.mux.HandleFunc("PATCH /leads/{id}", lh.Update)
	a.mux.HandleFunc("POST /leads/{id}/status", lh.UpdateStatus)
	a.mux.HandleFunc("POST /leads/{id}/delete", lh.Delete)
	a.mux.HandleFunc("DELETE /leads/{id}", lh.Delete)

	ch := a.routerCfg.ContactHandler
	a.mux.HandleFunc("GET /contacts", ch.List)
	a.mux.HandleFunc("GET /contacts/new", ch.New)
	a.mux.HandleFunc("POST /contacts", ch.Create)
	a.mux.HandleFunc("GET /contacts/{id}", ch.View)
	a.mux.HandleFunc("GET /contacts/{id}/edit", ch.Edit)
	a.mux.HandleFunc("POST /contacts/{id}", ch.Update)
	a.mux.HandleFunc("PATCH /contacts/{id}", ch.Update)
	a.mux.HandleFunc("POST /contacts/{id}/delete", ch.Delete)
	a.mux.HandleFunc("DELETE /contacts/{id}", ch.Delete)

	oh := a.routerCfg.OrganizationHandler
	a.mux.HandleFunc("GET /organizations", oh.List)
	a.mux.HandleFunc("GET /organizations/new", oh.New)
	a.mux.HandleFunc("POST /organizations", oh.Create)
	a.mux.HandleFunc("GET /organizations/{id}", oh.View)
	a.mux.HandleFunc("GET /organizations/{id}/edit", oh.Edit)
	a.mux.HandleFunc("POST /organizations/{id}", oh.Update)
	a.mux.HandleFunc("PATCH /organizations/{id}", oh.Update)
	a.mux.HandleFunc("POST /organizations/{id}/delete", oh.Delete)
	a.mux.HandleFunc("DELETE /organizations/{id}", oh.Delete)

	ach := a.routerCfg.ActivityHandler
	a.mux.HandleFunc("GET /activities", ach.List)
	a.mux.HandleFunc("GET /activities/new", ach.New)
	a.mux.HandleFunc("POST /activities", ach.Create)
	a.mux.HandleFunc("GET /activities/{id}/edit", ach.Edit)
	a.mux.HandleFunc("POST /activities/{id}", ach.Update)
	a.mux.HandleFunc("PATCH /activities/{id}", ach.Update)
	a.mux.HandleFunc("POST /activities/{id}/toggle", ach.Toggle)
	a.mux.HandleFunc("POST /activities/{id}/delete", ach.Delete)
	a.mux.HandleFunc("DELETE /activities/{id}", ach.Delete)

	ph := a.routerCfg.ProductHandler
	a.mux.HandleFunc("GET /products", ph.List)
	a.mux.HandleFunc("GET /products/new", ph.New)
	a.mux.HandleFunc("POST /products", ph.Create)
	a.mux.HandleFunc("GET /products/{id}", ph.View)
	a.mux.HandleFunc("GET /products/{id}/edit", ph.Edit)
	a.mux.HandleFunc("POST /products/{id}", ph.Update)
	a.mux.HandleFunc("PATCH /products/{id}", ph.Update)
	a.mux.HandleFunc("POST /products/{id}/delete", ph.Delete)
	a.mux.HandleFunc("DELETE /products/{id}", ph.Delete)

	qh := a.routerCfg.QuoteHandler
	a.mux.HandleFunc("GET /quotes", qh.List)
	a.mux.HandleFunc("POST /quotes", qh.Create)
	a.mux.HandleFunc("GET /quotes/{id}", qh.View)
	a.mux.HandleFunc("POST /quotes/{id}/status", qh.UpdateStatus)
	a.mux.HandleFunc("POST /quotes/{id}/delete", qh.Delete)
	a.mux.HandleFunc("DELETE /quotes/{id}", qh.Delete)

	mh := a.routerCfg.MailHandler
	a.mux.HandleFunc("GET /mail", mh.List)
	a.mux.HandleFunc("POST /mail/send", mh.Send)
	a.mux.HandleFunc("POST /mail/{id}/read", mh.MarkRead)
	a.mux.HandleFunc("POST /mail/{id}/star", mh.ToggleStar)
	a.mux.HandleFunc("POST /mail/{id}/archive", mh.Archive)
	a.mux.HandleFunc("POST /mail/{id}/delete", mh.Delete)
	a.mux.HandleFunc("DELETE /mail/{id}", mh.Delete)

	sh := a.routerCfg.SettingsHandler
	a.mux.HandleFunc("GET /settings", sh.Show)
	a.mux.HandleFunc("POST /settings/profile", sh.UpdateProfile)
	a.mux.HandleFunc("POST /settings/password", sh.ChangePassword)

	a.mux.HandleFunc("/", handlers.NotFound)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(a.db.WithContext(r.Context())); err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// home redirects by session. Gate normally answers "/" before it gets here.
func (a *App) home(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.AppPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
