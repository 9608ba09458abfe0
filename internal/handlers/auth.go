package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "login.html", nil)
		return
	}

	email := formString(r, "email")
	user, err := h.users.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			slog.Error("login", "error", err)
		}
		render(w, r, "login.html", map[string]any{"Error": "invalid_credentials", "Email": email})
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Register handles the HTML sign-up form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "register.html", nil)
		return
	}

	in := services.RegisterInput{
		Name:     formString(r, "name"),
		Email:    formString(r, "email"),
		Password: r.FormValue("password"),
	}
	v := validation.Violations{}
	validation.Email("email", in.Email, v)
	validation.MinLength("password", in.Password, 6, v)
	if !v.Empty() {
		render(w, r, "register.html", map[string]any{"Errors": v, "Name": in.Name, "Email": in.Email})
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		data := map[string]any{"Name": in.Name, "Email": in.Email}
		switch {
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrEmailTaken):
			data["Error"] = err.Error()
		default:
			slog.Error("register", "error", err)
			data["Error"] = "Failed to create user"
		}
		render(w, r, "register.html", data)
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type registerResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
}

// RegisterAPI is POST /api/register with a JSON {name, email, password} body.
func (h *AuthHandler) RegisterAPI(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, registerResponse{Message: "User created successfully", User: user.Summary()})
	case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		slog.Error("register api", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to create user", nil)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
