package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
	"golang.org/x/sync/errgroup"
)

type ActivityHandler struct {
	svc *services.Services
}

func NewActivityHandler(svc *services.Services) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func activityFromForm(r *http.Request, v validation.Violations) services.ActivityInput {
	return services.ActivityInput{
		Type:        models.ActivityType(formString(r, "type")),
		Title:       formString(r, "title"),
		Description: formString(r, "description"),
		DueDate:     formDate(r, "due_date", v),
		LeadID:      formID(r, "lead_id"),
		ContactID:   formID(r, "contact_id"),
	}
}

func activityPatchFromForm(r *http.Request, v validation.Violations) services.ActivityPatch {
	typ := models.ActivityType(formString(r, "type"))
	p := services.ActivityPatch{
		Type:        &typ,
		Title:       formStringPtr(r, "title"),
		Description: formStringPtr(r, "description"),
		DueDate:     formDate(r, "due_date", v),
		LeadID:      formID(r, "lead_id"),
		ContactID:   formID(r, "contact_id"),
	}
	if _, ok := r.Form["completed"]; ok {
		c := formBool(r, "completed")
		p.Completed = &c
	}
	return p
}

func (h *ActivityHandler) options(r *http.Request, data map[string]any) error {
	g, ctx := errgroup.WithContext(r.Context())
	var leads, contacts []models.Option
	g.Go(func() (err error) { leads, err = h.svc.Leads.Options(ctx); return })
	g.Go(func() (err error) { contacts, err = h.svc.Contacts.Options(ctx); return })
	if err := g.Wait(); err != nil {
		return err
	}
	data["LeadOptions"] = leads
	data["ContactOptions"] = contacts
	data["Types"] = models.ActivityTypes
	return nil
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	var acts []models.Activity
	data := map[string]any{}
	g.Go(func() (err error) { acts, err = h.svc.Activities.List(ctx); return })
	if !httpx.WantsJSON(r) {
		g.Go(func() error { return h.options(r.WithContext(ctx), data) })
	}
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, acts)
		return
	}
	data["Activities"] = acts
	render(w, r, "activities/index.html", data)
}

func (h *ActivityHandler) New(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Activity": services.ActivityInput{Type: models.ActivityTask, LeadID: formIDQuery(r, "lead_id")}}
	if err := h.options(r, data); err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "activities/new.html", data)
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a *models.Activity
	in, err := bindForm(r, activityFromForm)
	if err == nil {
		a, err = h.svc.Activities.Create(r.Context(), in)
	}
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			data := map[string]any{"Activity": in, "Errors": fields}
			if oerr := h.options(r, data); oerr != nil {
				fail(w, r, oerr)
				return
			}
			render(w, r, "activities/new.html", data)
			return
		}
		fail(w, r, err)
		return
	}
	back := "/activities"
	if a.LeadID != nil && r.FormValue("return") == "lead" {
		back = "/leads/" + strconv.FormatUint(uint64(*a.LeadID), 10)
	}
	done(w, r, http.StatusCreated, a, back, "created")
}

func (h *ActivityHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Activities.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	data := map[string]any{"Activity": a}
	if err := h.options(r, data); err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "activities/edit.html", data)
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var a *models.Activity
	p, err := bindForm(r, activityPatchFromForm)
	if err == nil {
		a, err = h.svc.Activities.Update(r.Context(), id, p)
	}
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			current, gerr := h.svc.Activities.Get(r.Context(), id)
			if gerr != nil {
				fail(w, r, gerr)
				return
			}
			data := map[string]any{"Activity": current, "Errors": fields}
			if oerr := h.options(r, data); oerr != nil {
				fail(w, r, oerr)
				return
			}
			render(w, r, "activities/edit.html", data)
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, a, "/activities", "saved")
}

// Toggle flips the completed checkbox.
func (h *ActivityHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Activities.ToggleComplete(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, a, localReferer(r, "/activities"), "")
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Activities.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/activities", "deleted")
}

// formIDQuery reads an optional id from the query string.
func formIDQuery(r *http.Request, key string) *uint {
	n, err := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

// localReferer returns the path of the referring page, or fallback when the
// referer is missing or points elsewhere.
func localReferer(r *http.Request, fallback string) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}
	return u.RequestURI()
}
