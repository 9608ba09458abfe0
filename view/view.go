package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/i18n"
)

var (
	baseDir  string
	once     sync.Once
	devMode  = os.Getenv("DEV") == "1"
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	// userResolver lets the host app expose the signed-in user's display name to the layout.
	userResolver func(*http.Request) string
)

var partials = []string{
	"header.html",
	"page-header.html",
	"errors-alert.html",
	"stat-card.html",
	"lead-card.html",
	"lead-form.html",
	"contact-form.html",
	"organization-form.html",
	"product-form.html",
	"activity-form.html",
}

// SetUserResolver sets the callback the layout uses to greet the current user.
func SetUserResolver(f func(*http.Request) string) {
	if f != nil {
		userResolver = f
	}
}

// SetDevMode disables the template cache so edits show up on reload.
func SetDevMode(dev bool) { devMode = dev }

func detectBase() {
	for _, c := range []string{"templates", "../templates", "../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the func map shared by every template.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.LangFromContext(r.Context())
	path := r.URL.Path
	return template.FuncMap{
		"t":    func(code any) string { return i18n.T(lang, fmt.Sprint(code)) },
		"lang": func() string { return lang },
		// active marks the sidebar entry owning the current path
		"active": func(prefix string) bool { return path == prefix || strings.HasPrefix(path, prefix+"/") },
		"money":  Money,
		"date":   func(v any) string { return formatTime(v, "Jan 2, 2006", "-") },
		"datetime": func(v any) string {
			return formatTime(v, "Jan 2, 2006 15:04", "-")
		},
		// isodate fills <input type="date">, so empty stays empty
		"isodate":  func(v any) string { return formatTime(v, "2006-01-02", "") },
		"initials": Initials,
		"deref":    deref,
		"year":     func() int { return time.Now().Year() },
		"lower":    strings.ToLower,
		// selected compares a possibly-nil field with an option value
		"selected": func(field, option any) bool {
			v := deref(field)
			return v != nil && fmt.Sprint(v) == fmt.Sprint(deref(option))
		},
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// Money formats an amount as US dollars with thousands separators.
func Money(v any) string {
	var f float64
	switch n := deref(v).(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case nil:
		f = 0
	default:
		return "$0.00"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	s := fmt.Sprintf("%.2f", f)
	intPart, dec := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + dec
}

// Initials returns up to two upper-case initials of name, "?" when empty.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	var out []rune
	for _, f := range fields {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

func formatTime(v any, layout, empty string) string {
	switch t := deref(v).(type) {
	case time.Time:
		if t.IsZero() {
			return empty
		}
		return t.Format(layout)
	default:
		return empty
	}
}

// deref unwraps the pointer types models use for nullable columns.
func deref(v any) any {
	switch p := v.(type) {
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return ""
		}
		return *p
	case *uint:
		if p == nil {
			return nil
		}
		return *p
	case *bool:
		if p == nil {
			return false
		}
		return *p
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

// Render parses and executes a page template inside layout.html.
// name is relative to the templates dir (e.g. "leads/index.html").
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
		if loggedIn && userResolver != nil {
			data["CurrentUserName"] = userResolver(r)
		}
	}
	data["Path"] = r.URL.Path

	t, err := load(r, name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return Render(w, r, name, data)
}

// load returns a request-bound clone of the parsed template; the cached
// original is never executed so it can be cloned again.
func load(r *http.Request, name string) (*template.Template, error) {
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return bind(t, r)
		}
	}
	mainPath := filepath.Join(baseDir, name)
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	var t *template.Template
	// Full documents (login, register) skip the layout.
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		t, err = template.New(filepath.Base(name)).Funcs(Funcs(r)).ParseFiles(mainPath)
	} else {
		files := []string{filepath.Join(baseDir, "layout.html"), mainPath}
		for _, p := range partials {
			pp := filepath.Join(baseDir, "partials", p)
			if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
				files = append(files, pp)
			}
		}
		t, err = template.New("layout.html").Funcs(Funcs(r)).ParseFiles(files...)
	}
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New("template not parsed: " + name)
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return bind(t, r)
}

func bind(t *template.Template, r *http.Request) (*template.Template, error) {
	c, err := t.Clone()
	if err != nil {
		return nil, err
	}
	return c.Funcs(Funcs(r)), nil
}
