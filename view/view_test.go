package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMoney(t *testing.T) {
	v := 1234567.5
	cases := []struct {
		in   any
		want string
	}{
		{0.0, "$0.00"},
		{12.5, "$12.50"},
		{1000, "$1,000.00"},
		{&v, "$1,234,567.50"},
		{(*float64)(nil), "$0.00"},
		{-2500.0, "-$2,500.00"},
		{"x", "$0.00"},
	}
	for _, c := range cases {
		if got := Money(c.in); got != c.want {
			t.Errorf("Money(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace":         "AL",
		"grace":                "G",
		"  ":                   "?",
		"John Ronald Reuel T.": "JR",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

type source string

func TestFuncs(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/leads/4", nil)
	f := Funcs(r)

	selected := f["selected"].(func(any, any) bool)
	id := uint(3)
	src := source("WEB")
	if !selected(&id, uint(3)) || selected(&id, uint(4)) {
		t.Fatal("selected mismatch on *uint")
	}
	if selected((*uint)(nil), uint(0)) {
		t.Fatal("nil field must never be selected")
	}
	if !selected(&src, "WEB") || !selected("NEW", "NEW") {
		t.Fatal("selected mismatch on named string")
	}

	active := f["active"].(func(string) bool)
	if !active("/leads") || active("/lead") {
		t.Fatal("active prefix matching is wrong")
	}

	isodate := f["isodate"].(func(any) string)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if isodate(&day) != "2026-05-01" || isodate((*time.Time)(nil)) != "" {
		t.Fatal("isodate should format dates and leave empty values empty")
	}
	date := f["date"].(func(any) string)
	if date(time.Time{}) != "-" {
		t.Fatal("zero date should render a dash")
	}
}

func TestRenderNotFound(t *testing.T) {
	ResetForTests()
	SetBaseDir("../templates")
	t.Cleanup(ResetForTests)

	r := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()
	if err := RenderStatus(w, r, http.StatusNotFound, "not_found.html", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "404") || !strings.Contains(body, "<nav>") {
		t.Fatalf("page not wrapped in layout: %s", body)
	}
}
