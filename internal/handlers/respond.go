package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
	"github.com/diewo77/go-crm/view"
)

var errInvalidBody = errors.New("invalid_body")

// fail maps a service error onto the response: JSON for API callers,
// a redirect or error page for browsers.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		badRequest(w, r, "invalid_body")
	case errors.Is(err, services.ErrUnauthorized):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	case errors.Is(err, services.ErrNotFound):
		notFound(w, r)
	case errors.Is(err, services.ErrConflict):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusConflict, "conflict", nil)
			return
		}
		http.Error(w, "Conflict", http.StatusConflict)
	case errors.As(err, &ve):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Fields)
			return
		}
		http.Error(w, ve.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"error", err,
		)
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := view.RenderStatus(w, r, http.StatusNotFound, "not_found.html", nil); err != nil {
		slog.Error("render 404", "error", err)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}
	http.Error(w, msg, http.StatusBadRequest)
}

// render writes a page and logs template failures.
func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = middleware.TakeFlash(w, r)
	}
	if err := view.Render(w, r, name, data); err != nil {
		slog.Error("render", "template", name, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// validationFields returns the field violations carried by err, if any.
func validationFields(err error) map[string]string {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// bind decodes a JSON body into T or builds T from the submitted form.
func bind[T any](r *http.Request, fromForm func(*http.Request) T) (T, error) {
	var v T
	if httpx.IsJSONBody(r) {
		err := httpx.DecodeJSON(r, &v)
		return v, err
	}
	if err := r.ParseForm(); err != nil {
		return v, err
	}
	return fromForm(r), nil
}

// bindForm is bind for forms carrying numbers or dates. Unparsable inputs are
// reported as a *services.ValidationError next to the partially built T.
func bindForm[T any](r *http.Request, fromForm func(*http.Request, validation.Violations) T) (T, error) {
	var v T
	if httpx.IsJSONBody(r) {
		if err := httpx.DecodeJSON(r, &v); err != nil {
			return v, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		return v, nil
	}
	if err := r.ParseForm(); err != nil {
		return v, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	bad := validation.Violations{}
	v = fromForm(r, bad)
	if !bad.Empty() {
		return v, &services.ValidationError{Fields: bad}
	}
	return v, nil
}

// done answers a successful mutation: JSON payload or redirect with a flash.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, location, flash string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	if flash != "" {
		middleware.Flash(w, r, flash)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := httpx.PathID(r)
	if !ok {
		notFound(w, r)
	}
	return id, ok
}

// Form field parsers. Empty inputs map to nil on create forms.

func formString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func formStringPtr(r *http.Request, key string) *string {
	v := formString(r, key)
	return &v
}

func formFloat(r *http.Request, key string, v validation.Violations) *float64 {
	s := formString(r, key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v[key] = "invalid_number"
		return nil
	}
	return &f
}

func formInt(r *http.Request, key string, v validation.Violations) int {
	s := formString(r, key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		v[key] = "invalid_number"
	}
	return n
}

// formID returns nil for a missing field and a pointer to 0 for an empty one,
// which services read as "clear".
func formID(r *http.Request, key string) *uint {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	n, err := strconv.ParseUint(formString(r, key), 10, 64)
	if err != nil {
		n = 0
	}
	id := uint(n)
	return &id
}

// formDate parses an <input type="date">. An empty value gives a zero time,
// a malformed one a violation and nil so the stored date is left alone.
func formDate(r *http.Request, key string, v validation.Violations) *time.Time {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	var t time.Time
	if s := formString(r, key); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			v[key] = "invalid_date"
			return nil
		}
		t = parsed
	}
	return &t
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.FormValue(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// NotFound is the router's fallback for unmatched paths.
func NotFound(w http.ResponseWriter, r *http.Request) { notFound(w, r) }
