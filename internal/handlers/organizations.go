package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/services"
)

type OrganizationHandler struct {
	svc *services.Services
}

func NewOrganizationHandler(svc *services.Services) *OrganizationHandler {
	return &OrganizationHandler{svc: svc}
}

func organizationFromForm(r *http.Request) services.OrganizationInput {
	return services.OrganizationInput{
		Name:     formString(r, "name"),
		Email:    formString(r, "email"),
		Phone:    formString(r, "phone"),
		Website:  formString(r, "website"),
		Industry: formString(r, "industry"),
		Address:  formString(r, "address"),
		Notes:    formString(r, "notes"),
	}
}

func organizationPatchFromForm(r *http.Request) services.OrganizationPatch {
	return services.OrganizationPatch{
		Name:     formStringPtr(r, "name"),
		Email:    formStringPtr(r, "email"),
		Phone:    formStringPtr(r, "phone"),
		Website:  formStringPtr(r, "website"),
		Industry: formStringPtr(r, "industry"),
		Address:  formStringPtr(r, "address"),
		Notes:    formStringPtr(r, "notes"),
	}
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	orgs, err := h.svc.Organizations.List(r.Context(), query)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, orgs)
		return
	}
	render(w, r, "organizations/index.html", map[string]any{"Organizations": orgs, "Query": query})
}

func (h *OrganizationHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, "organizations/new.html", map[string]any{"Organization": services.OrganizationInput{}})
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := bind(r, organizationFromForm)
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	o, err := h.svc.Organizations.Create(r.Context(), in)
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			render(w, r, "organizations/new.html", map[string]any{"Organization": in, "Errors": fields})
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, o, "/organizations/"+strconv.FormatUint(uint64(o.ID), 10), "created")
}

func (h *OrganizationHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Organizations.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, o)
		return
	}
	render(w, r, "organizations/view.html", map[string]any{"Organization": o})
}

func (h *OrganizationHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Organizations.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "organizations/edit.html", map[string]any{"Organization": o})
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := bind(r, organizationPatchFromForm)
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	o, err := h.svc.Organizations.Update(r.Context(), id, p)
	if err != nil {
		if fields := validationFields(err); fields != nil && !httpx.WantsJSON(r) {
			current, gerr := h.svc.Organizations.Get(r.Context(), id)
			if gerr != nil {
				fail(w, r, gerr)
				return
			}
			render(w, r, "organizations/edit.html", map[string]any{"Organization": current, "Errors": fields})
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, o, "/organizations/"+strconv.FormatUint(uint64(id), 10), "saved")
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Organizations.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/organizations", "deleted")
}
