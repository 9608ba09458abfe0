package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
)

type ProductHandler struct {
	svc *services.Services
}

func NewProductHandler(svc *services.Services) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func productFromForm(r *http.Request, v validation.Violations) services.ProductInput {
	active := formBool(r, "is_active")
	in := services.ProductInput{
		Name:        formString(r, "name"),
		SKU:         formString(r, "sku"),
		Description: formString(r, "description"),
		Quantity:    formInt(r, "quantity", v),
		IsActive:    &active,
	}
	if p := formFloat(r, "price", v); p != nil {
		in.Price = *p
	}
	return in
}

func productPatchFromForm(r *http.Request, v validation.Violations) services.ProductPatch {
	active := formBool(r, "is_active")
	qty := formInt(r, "quantity", v)
	p := services.ProductPatch{
		Name:        formStringPtr(r, "name"),
		SKU:         formStringPtr(r, "sku"),
		Description: formStringPtr(r, "description"),
		Price:       formFloat(r, "price", v),
		Quantity:    &qty,
		IsActive:    &active,
	}
	return p
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	products, err := h.svc.Products.List(r.Context(), query)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, products)
		return
	}
	render(w, r, "products/index.html", map[string]any{"Products": products, "Query": query})
}

func (h *ProductHandler) New(w http.ResponseWriter, r *http.Request) {
	active := true
	render(w, r, "products/new.html", map[string]any{"Product": services.ProductInput{IsActive: &active}})
}

// skuTaken turns a duplicate SKU into a form error.
func skuTaken(err error) validation.Violations {
	if errors.Is(err, services.ErrConflict) {
		return validation.Violations{"sku": "already_exists"}
	}
	return nil
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p *models.Product
	in, err := bindForm(r, productFromForm)
	if err == nil {
		p, err = h.svc.Products.Create(r.Context(), in)
	}
	if err != nil {
		if !httpx.WantsJSON(r) {
			if fields := validationFields(err); fields != nil {
				render(w, r, "products/new.html", map[string]any{"Product": in, "Errors": fields})
				return
			}
			if fields := skuTaken(err); fields != nil {
				render(w, r, "products/new.html", map[string]any{"Product": in, "Errors": fields})
				return
			}
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, p, "/products/"+strconv.FormatUint(uint64(p.ID), 10), "created")
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	render(w, r, "products/view.html", map[string]any{"Product": p})
}

func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, "products/edit.html", map[string]any{"Product": p})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p *models.Product
	patch, err := bindForm(r, productPatchFromForm)
	if err == nil {
		p, err = h.svc.Products.Update(r.Context(), id, patch)
	}
	if err != nil {
		fields := validationFields(err)
		if fields == nil {
			fields = skuTaken(err)
		}
		if fields != nil && !httpx.WantsJSON(r) {
			current, gerr := h.svc.Products.Get(r.Context(), id)
			if gerr != nil {
				fail(w, r, gerr)
				return
			}
			render(w, r, "products/edit.html", map[string]any{"Product": current, "Errors": fields})
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, p, "/products/"+strconv.FormatUint(uint64(id), 10), "saved")
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Products.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]bool{"success": true}, "/products", "deleted")
}
