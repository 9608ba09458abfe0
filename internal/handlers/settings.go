package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
)

type SettingsHandler struct {
	users *services.UserService
}

func NewSettingsHandler(users *services.UserService) *SettingsHandler {
	return &SettingsHandler{users: users}
}

func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, nil)
}

func (h *SettingsHandler) render(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	u, err := h.users.Current(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) && extra == nil {
		httpx.JSON(w, http.StatusOK, u.Summary())
		return
	}
	data := map[string]any{"User": u}
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, "settings.html", data)
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	in, err := bind(r, func(r *http.Request) services.ProfileInput {
		return services.ProfileInput{Name: formString(r, "name"), Email: formString(r, "email")}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), in)
	if err != nil {
		if !httpx.WantsJSON(r) {
			if fields := validationFields(err); fields != nil {
				h.render(w, r, map[string]any{"ProfileErrors": fields})
				return
			}
			if errors.Is(err, services.ErrEmailTaken) {
				h.render(w, r, map[string]any{"ProfileErrors": validation.Violations{"email": "already_exists"}})
				return
			}
		}
		if errors.Is(err, services.ErrEmailTaken) {
			badRequest(w, r, err.Error())
			return
		}
		fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, u.Summary(), "/settings", "saved")
}

func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	type passwordRequest struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	in, err := bind(r, func(r *http.Request) passwordRequest {
		return passwordRequest{Current: r.FormValue("current_password"), New: r.FormValue("new_password")}
	})
	if err != nil {
		badRequest(w, r, "invalid_body")
		return
	}
	if !httpx.IsJSONBody(r) && r.FormValue("confirm_password") != in.New {
		h.render(w, r, map[string]any{"PasswordErrors": validation.Violations{"confirm_password": "password_mismatch"}})
		return
	}
	err = h.users.ChangePassword(r.Context(), in.Current, in.New)
	switch {
	case err == nil:
		if !httpx.WantsJSON(r) {
			middleware.Flash(w, r, "password_changed")
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, services.ErrWrongPassword):
		if httpx.WantsJSON(r) {
			badRequest(w, r, "wrong_password")
			return
		}
		h.render(w, r, map[string]any{"PasswordErrors": validation.Violations{"current_password": "wrong_password"}})
	case validationFields(err) != nil && !httpx.WantsJSON(r):
		h.render(w, r, map[string]any{"PasswordErrors": validationFields(err)})
	default:
		fail(w, r, err)
	}
}
