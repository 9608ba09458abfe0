package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/i18n"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/pipeline"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
	"golang.org/x/sync/errgroup"
)

type LeadHandler struct {
	svc *services.Services
}

func NewLeadHandler(svc *services.Services) *LeadHandler {
	return &LeadHandler{svc: svc}
}

func leadFromForm(r *http.Request, v validation.Violations) services.LeadInput {
	in := services.LeadInput{
		Title:             formString(r, "title"),
		Description:       formString(r, "description"),
		Value:             formFloat(r, "value", v),
		Status:            models.LeadStatus(formString(r, "status")),
		ExpectedCloseDate: formDate(r, "expected_close_date", v),
		ContactID:         formID(r, "contact_id"),
		OrganizationID:    formID(r, "organization_id"),
	}
	if s := formString(r, "source"); s != "" {
		src := models.LeadSource(s)
		in.Source = &src
	}
	return in
}

func leadPatchFromForm(r *http.Request, v validation.Violations) services.LeadPatch {
	p := services.LeadPatch{
		Title:             formStringPtr(r, "title"),
		Description:       formStringPtr(r, "description"),
		Value:             formFloat(r, "value", v),
		ExpectedCloseDate: formDate(r, "expected_close_date", v),
		ContactID:         formID(r, "contact_id"),
		OrganizationID:    formID(r, "organization_id"),
	}
	p.ClearValue = p.Value == nil
	if s := formString(r, "status"); s != "" {
		st := models.LeadStatus(s)
		p.Status = &st
	}
	src := models.LeadSource(formString(r, "source"))
	p.Source = &src
	return p
}

// formData loads the select options used by the lead forms and sidebar.
func (h *LeadHandler) formData(r *http.Request, data map[string]any) error {
	g, ctx := errgroup.WithContext(r.Context())
	var contacts, orgs []models.Option
	g.Go(func() (err error) { contacts, err = h.svc.Contacts.Options(ctx); return })
	g.Go(func() (err error) { orgs, err = h.svc.Organizations.Options(ctx); return })
	if err := g.Wait(); err != nil {
		return err
	}
	data["Contacts"] = contacts
	data["Organizations"] = orgs
	data["Statuses"] = models.LeadStatuses
	data["Sources"] = models.LeadSources
	return nil
}

// List renders the table, or the Kanban board with ?view=kanban.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	g, ctx := errgroup.WithContext(r.Context())
	var leads []models.Lead
	g.Go(func() (err error) { leads, err = h.svc.Leads.List(ctx, query); return })
	data := map[string]any{}
	if !httpx.WantsJSON(r) {
		g.Go(func() error { return h.formData(r.WithContext(ctx), data) })
	}
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, leads)
		return
	}
	data["Leads"] = leads
	data["Query"] = query
	data["View"] = r.URL.Query().Get("view")
	if data["View"] == "kanban" {
		board := pipeline.NewBoard(leads, h.svc.Leads, i18n.LangFromContext(r.Context()))
		data["Columns"] = board.Columns()
	}
	render(w, r, "leads/index.html", data)
}

func (h *LeadHandler) New(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Lead": models.Lead{Status: models.LeadNew}}
	if err := h.formData(r, data); err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "leads/new.html", data)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var lead *models.Lead
	in, err := bindForm(r, leadFromForm)
	if err == nil {
		lead, err = h.svc.Leads.Create(r.Context(), in)
	}
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			data := map[string]any{"Lead": in, "Errors": fields}
			if ferr := h.formData(r, data); ferr != nil {
				fail(w, r, ferr)
				return
			}
			render(w, r, "leads/new.html", data)
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, lead, "/leads/"+strconv.FormatUint(uint64(lead.ID), 10), "created")
}

func (h *LeadHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	lead, err := h.svc.Leads.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, lead)
		return
	}
	render(w, r, "leads/view.html", map[string]any{
		"Lead":     lead,
		"Progress": pipeline.ProgressFor(lead.Status),
		"Statuses": models.LeadStatuses,
	})
}

func (h *LeadHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	lead, err := h.svc.Leads.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	data := map[string]any{"Lead": lead}
	if err := h.formData(r, data); err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "leads/edit.html", data)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lead *models.Lead
	p, err := bindForm(r, leadPatchFromForm)
	if err == nil {
		lead, err = h.svc.Leads.Update(r.Context(), id, p)
	}
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			current, gerr := h.svc.Leads.Get(r.Context(), id)
			if gerr != nil {
				fail(w, r, gerr)
				return
			}
			data := map[string]any{"Lead": current, "Errors": fields}
			if ferr := h.formData(r, data); ferr != nil {
				fail(w, r, ferr)
				return
			}
			render(w, r, "leads/edit.html", data)
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, lead, "/leads/"+strconv.FormatUint(uint64(id), 10), "saved")
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Leads.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/leads", "deleted")
}

type statusRequest struct {
	Status models.LeadStatus `json:"status"`
}

// UpdateStatus is the call the board's drag-and-drop script makes.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := bind(r, func(r *http.Request) statusRequest {
		return statusRequest{Status: models.LeadStatus(formString(r, "status"))}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if err := h.svc.Leads.UpdateStatus(r.Context(), id, req.Status); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]any{"success": true, "status": req.Status},
		"/leads/"+strconv.FormatUint(uint64(id), 10), "saved")
}

type moveRequest struct {
	LeadID uint              `json:"lead_id"`
	Status models.LeadStatus `json:"status"`
}

type moveResponse struct {
	Success  bool              `json:"success"`
	Reverted bool              `json:"reverted,omitempty"`
	Error    string            `json:"error,omitempty"`
	Columns  []pipeline.Column `json:"columns"`
}

// Move runs a board move server side and returns the resulting columns.
func (h *LeadHandler) Move(w http.ResponseWriter, r *http.Request) {
	req, err := bind(r, func(r *http.Request) moveRequest {
		id := formID(r, "lead_id")
		m := moveRequest{Status: models.LeadStatus(formString(r, "status"))}
		if id != nil {
			m.LeadID = *id
		}
		return m
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	leads, err := h.svc.Leads.List(r.Context(), "")
	if err != nil {
		fail(w, r, err)
		return
	}
	board := pipeline.NewBoard(leads, h.svc.Leads, i18n.LangFromContext(r.Context()))
	resp := moveResponse{Success: true}
	if err := board.Move(r.Context(), req.LeadID, req.Status); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrUnknownLead):
			notFound(w, r)
			return
		case errors.Is(err, pipeline.ErrInvalidStatus):
			badRequest(w, r, "invalid_status")
			return
		case errors.Is(err, services.ErrUnauthorized):
			fail(w, r, err)
			return
		}
		resp = moveResponse{Success: false, Reverted: true, Error: err.Error()}
	}
	resp.Columns = board.Columns()
	if !httpx.WantsJSON(r) {
		http.Redirect(w, r, "/leads?view=kanban", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}
