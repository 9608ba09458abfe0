package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/services"
)

type ContactHandler struct {
	svc *services.Services
}

func NewContactHandler(svc *services.Services) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func contactFromForm(r *http.Request) services.ContactInput {
	return services.ContactInput{
		Name:           formString(r, "name"),
		Email:          formString(r, "email"),
		Phone:          formString(r, "phone"),
		JobTitle:       formString(r, "job_title"),
		Address:        formString(r, "address"),
		Notes:          formString(r, "notes"),
		OrganizationID: formID(r, "organization_id"),
	}
}

func contactPatchFromForm(r *http.Request) services.ContactPatch {
	return services.ContactPatch{
		Name:           formStringPtr(r, "name"),
		Email:          formStringPtr(r, "email"),
		Phone:          formStringPtr(r, "phone"),
		JobTitle:       formStringPtr(r, "job_title"),
		Address:        formStringPtr(r, "address"),
		Notes:          formStringPtr(r, "notes"),
		OrganizationID: formID(r, "organization_id"),
	}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	contacts, err := h.svc.Contacts.List(r.Context(), query)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, contacts)
		return
	}
	render(w, r, "contacts/index.html", map[string]any{"Contacts": contacts, "Query": query})
}

func (h *ContactHandler) form(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	orgs, err := h.svc.Organizations.Options(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	data["Organizations"] = orgs
	render(w, r, name, data)
}

func (h *ContactHandler) New(w http.ResponseWriter, r *http.Request) {
	h.form(w, r, "contacts/new.html", map[string]any{"Contact": services.ContactInput{OrganizationID: formIDQuery(r, "organization_id")}})
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := bind(r, contactFromForm)
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	c, err := h.svc.Contacts.Create(r.Context(), in)
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			h.form(w, r, "contacts/new.html", map[string]any{"Contact": in, "Errors": fields})
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, c, "/contacts/"+strconv.FormatUint(uint64(c.ID), 10), "created")
}

func (h *ContactHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Contacts.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	render(w, r, "contacts/view.html", map[string]any{"Contact": c})
}

func (h *ContactHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Contacts.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.form(w, r, "contacts/edit.html", map[string]any{"Contact": c})
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := bind(r, contactPatchFromForm)
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	c, err := h.svc.Contacts.Update(r.Context(), id, p)
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			current, gerr := h.svc.Contacts.Get(r.Context(), id)
			if gerr != nil {
				fail(w, r, gerr)
				return
			}
			h.form(w, r, "contacts/edit.html", map[string]any{"Contact": current, "Errors": fields})
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, c, "/contacts/"+strconv.FormatUint(uint64(id), 10), "saved")
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Contacts.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/contacts", "deleted")
}
