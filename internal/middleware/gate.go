// Package middleware holds the request-entry handlers wrapped around the mux.
package middleware

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
)

// Decision is what the gate does with a request before any handler runs.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectApp
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect-login"
	case RedirectApp:
		return "redirect-app"
	default:
		return "allow"
	}
}

const (
	LoginPath = "/login"
	AppPath   = "/dashboard"
)

var protectedPrefixes = []string{
	"/dashboard", "/leads", "/contacts", "/organizations", "/products",
	"/activities", "/quotes", "/mail", "/settings",
}

var ungated = []string{"/api/", "/static/", "/health"}

func hasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decide routes a request given its path and whether a session exists.
func Decide(path string, loggedIn bool) Decision {
	for _, p := range ungated {
		if strings.HasPrefix(path, p) {
			return Allow
		}
	}
	if path == "/" {
		if loggedIn {
			return RedirectApp
		}
		return RedirectLogin
	}
	if hasPrefix(path, "/login") || hasPrefix(path, "/register") {
		if loggedIn {
			return RedirectApp
		}
		return Allow
	}
	for _, p := range protectedPrefixes {
		if hasPrefix(path, p) && !loggedIn {
			return RedirectLogin
		}
	}
	return Allow
}

// Gate applies Decide. It must run after auth.Middleware so the session is on the context.
// API callers get a JSON 401 instead of the login redirect.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		switch Decide(r.URL.Path, loggedIn) {
		case RedirectLogin:
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		case RedirectApp:
			http.Redirect(w, r, AppPath, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
