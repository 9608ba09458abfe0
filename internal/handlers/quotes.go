package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
	"golang.org/x/sync/errgroup"
)

type QuoteHandler struct {
	svc *services.Services
}

func NewQuoteHandler(svc *services.Services) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

func quoteFromForm(r *http.Request, v validation.Violations) services.QuoteInput {
	in := services.QuoteInput{
		Subject: formString(r, "subject"),
		Status:  models.QuoteStatus(formString(r, "status")),
		LeadID:  formID(r, "lead_id"),
	}
	if t := formFloat(r, "total", v); t != nil {
		in.Total = *t
	}
	return in
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	var quotes []models.Quote
	var leads []models.Option
	g.Go(func() (err error) { quotes, err = h.svc.Quotes.List(ctx); return })
	if !httpx.WantsJSON(r) {
		g.Go(func() (err error) { leads, err = h.svc.Leads.Options(ctx); return })
	}
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, quotes)
		return
	}
	render(w, r, "quotes/index.html", map[string]any{
		"Quotes":      quotes,
		"LeadOptions": leads,
		"Statuses":    models.QuoteStatuses,
	})
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var q *models.Quote
	in, err := bindForm(r, quoteFromForm)
	if err == nil {
		q, err = h.svc.Quotes.Create(r.Context(), in)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, q, "/quotes", "created")
}

// View returns one quote to API callers; browsers land on its row in the list.
func (h *QuoteHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.svc.Quotes.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, q)
		return
	}
	http.Redirect(w, r, "/quotes#quote-"+strconv.FormatUint(uint64(q.ID), 10), http.StatusSeeOther)
}

type quoteStatusRequest struct {
	Status models.QuoteStatus `json:"status"`
}

func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := bind(r, func(r *http.Request) quoteStatusRequest {
		return quoteStatusRequest{Status: models.QuoteStatus(formString(r, "status"))}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if err := h.svc.Quotes.UpdateStatus(r.Context(), id, in.Status); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]any{"success": true, "status": in.Status}, "/quotes", "saved")
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Quotes.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/quotes", "deleted")
}
