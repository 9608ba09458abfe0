package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/mailer"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func createUser(t *testing.T, d *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Name: "Grace Hopper", Email: "grace@example.com", Password: "x", Role: models.RoleUser}
	if err := d.Create(u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

// jsonRequest builds an API call; uid 0 sends it without a session.
func jsonRequest(method, target, body string, uid uint) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	return req
}

func withID(req *http.Request, id uint) *http.Request {
	req.SetPathValue("id", strconv.FormatUint(uint64(id), 10))
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestRegisterAPI(t *testing.T) {
	d := setupTestDB(t)
	h := NewAuthHandler(services.NewUserService(d))

	w := httptest.NewRecorder()
	h.RegisterAPI(w, jsonRequest(http.MethodPost, "/api/register", `{"name":"Ada","email":"Ada@Example.com","password":"secret1"}`, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "User created successfully") || strings.Contains(body, "password") {
		t.Fatalf("unexpected body: %s", body)
	}

	w = httptest.NewRecorder()
	h.RegisterAPI(w, jsonRequest(http.MethodPost, "/api/register", `{"name":"Ada 2","email":"ada@example.com","password":"other12"}`, 0))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400 got %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["error"]; got != "User with this email already exists" {
		t.Fatalf("duplicate error = %v", got)
	}

	w = httptest.NewRecorder()
	h.RegisterAPI(w, jsonRequest(http.MethodPost, "/api/register", `{"email":"bob@example.com","password":"secret1"}`, 0))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400 got %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["error"]; got != "Missing required fields" {
		t.Fatalf("missing field error = %v", got)
	}

	var n int64
	d.Model(&models.User{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one user, got %d", n)
	}
}

func TestRegisterAPI_InvalidJSON(t *testing.T) {
	d := setupTestDB(t)
	h := NewAuthHandler(services.NewUserService(d))
	w := httptest.NewRecorder()
	h.RegisterAPI(w, jsonRequest(http.MethodPost, "/api/register", `{"name":`, 0))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestJSONRequiresSession(t *testing.T) {
	d := setupTestDB(t)
	svc := services.New(d, nil, nil)
	leads := NewLeadHandler(svc)

	w := httptest.NewRecorder()
	leads.List(w, jsonRequest(http.MethodGet, "/leads", "", 0))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["error"]; got != "Unauthorized" {
		t.Fatalf("error = %v", got)
	}

	w = httptest.NewRecorder()
	leads.Create(w, jsonRequest(http.MethodPost, "/leads", `{"title":"Sneaky"}`, 0))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("create: expected 401 got %d", w.Code)
	}
	var n int64
	d.Model(&models.Lead{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected create wrote %d rows", n)
	}
}

func TestLeadCRUD_JSON(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewLeadHandler(services.New(d, nil, nil))

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/leads", `{"title":"Website redesign","value":1200}`, u.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	lead := decode[models.Lead](t, w)
	if lead.Status != models.LeadNew || lead.UserID != u.ID {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	w = httptest.NewRecorder()
	h.View(w, withID(jsonRequest(http.MethodGet, "/leads/x", "", u.ID), lead.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("view: expected 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Update(w, withID(jsonRequest(http.MethodPatch, "/leads/x", `{"title":"Website rebuild"}`, u.ID), lead.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[models.Lead](t, w); got.Title != "Website rebuild" || got.Amount() != 1200 {
		t.Fatalf("partial update lost fields: %+v", got)
	}

	w = httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/leads", `{"title":""}`, u.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("validation: expected 400 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Delete(w, withID(jsonRequest(http.MethodDelete, "/leads/x", "", u.ID), lead.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.View(w, withID(jsonRequest(http.MethodGet, "/leads/x", "", u.ID), lead.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("view deleted: expected 404 got %d", w.Code)
	}
}

func TestLeadUpdateStatus(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewLeadHandler(services.New(d, nil, nil))
	lead := models.Lead{Title: "Deal", Status: models.LeadNew, UserID: u.ID}
	d.Create(&lead)

	tests := []struct {
		name   string
		id     uint
		body   string
		status int
	}{
		{"valid", lead.ID, `{"status":"WON"}`, http.StatusOK},
		{"backwards", lead.ID, `{"status":"NEW"}`, http.StatusOK},
		{"invalid status", lead.ID, `{"status":"ARCHIVED"}`, http.StatusBadRequest},
		{"missing lead", lead.ID + 99, `{"status":"WON"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.UpdateStatus(w, withID(jsonRequest(http.MethodPost, "/leads/x/status", tt.body, u.ID), tt.id))
			if w.Code != tt.status {
				t.Fatalf("expected %d got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
	var got models.Lead
	d.First(&got, lead.ID)
	if got.Status != models.LeadNew {
		t.Fatalf("status = %s, want NEW", got.Status)
	}
}

func TestLeadMove(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewLeadHandler(services.New(d, nil, nil))
	lead := models.Lead{Title: "Deal", Status: models.LeadQualified, UserID: u.ID, Value: new(float64)}
	d.Create(&lead)

	move := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.Move(w, jsonRequest(http.MethodPost, "/leads/board/move", body, u.ID))
		return w
	}

	w := move(`{"lead_id":` + strconv.Itoa(int(lead.ID)) + `,"status":"PROPOSAL"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("move: expected 200 got %d", w.Code)
	}
	resp := decode[moveResponse](t, w)
	if !resp.Success || len(resp.Columns) != len(models.LeadStatuses) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	var got models.Lead
	d.First(&got, lead.ID)
	if got.Status != models.LeadProposal {
		t.Fatalf("status = %s, want PROPOSAL", got.Status)
	}

	if w := move(`{"lead_id":` + strconv.Itoa(int(lead.ID)) + `,"status":"PROPOSAL"}`); w.Code != http.StatusOK {
		t.Fatalf("same column: expected 200 got %d", w.Code)
	}
	if w := move(`{"lead_id":` + strconv.Itoa(int(lead.ID)) + `,"status":"BOGUS"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400 got %d", w.Code)
	}
	if w := move(`{"lead_id":9999,"status":"WON"}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown lead: expected 404 got %d", w.Code)
	}
}

func TestActivityToggle(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewActivityHandler(services.New(d, nil, nil))
	a := models.Activity{Type: models.ActivityCall, Title: "Call back", UserID: u.ID}
	d.Create(&a)

	w := httptest.NewRecorder()
	h.Toggle(w, withID(jsonRequest(http.MethodPost, "/activities/x/toggle", "", u.ID), a.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	got := decode[models.Activity](t, w)
	if !got.Completed || got.CompletedAt == nil {
		t.Fatalf("toggle did not complete: %+v", got)
	}

	w = httptest.NewRecorder()
	h.Toggle(w, withID(jsonRequest(http.MethodPost, "/activities/x/toggle", "", u.ID), a.ID+1))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404 got %d", w.Code)
	}
}

func TestActivityToggle_RedirectStaysLocal(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewActivityHandler(services.New(d, nil, nil))
	a := models.Activity{Type: models.ActivityTask, Title: "Prepare", UserID: u.ID}
	d.Create(&a)

	req := httptest.NewRequest(http.MethodPost, "/activities/x/toggle", nil)
	req.Header.Set("Referer", "https://evil.example.com/phish")
	req = withID(req.WithContext(auth.WithUserID(req.Context(), u.ID)), a.ID)
	w := httptest.NewRecorder()
	h.Toggle(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/activities" {
		t.Fatalf("redirected to %q", loc)
	}
}

func TestProductDuplicateSKU(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewProductHandler(services.New(d, nil, nil))

	body := `{"name":"License","sku":"LIC-1","price":100}`
	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/products", body, u.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	if p := decode[models.Product](t, w); !p.IsActive || p.Quantity != 0 {
		t.Fatalf("defaults not applied: %+v", p)
	}

	w = httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/products", body, u.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate sku: expected 409 got %d", w.Code)
	}
}

type failingRelay struct{}

func (failingRelay) Enabled() bool { return true }
func (failingRelay) Send(context.Context, mailer.Message) error {
	return errors.New("relay down")
}

func TestMailSend_RelayFailure(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	svc := services.New(d, nil, services.NewMailService(d, failingRelay{}, "crm@example.com"))
	h := NewMailHandler(svc)

	w := httptest.NewRecorder()
	h.Send(w, jsonRequest(http.MethodPost, "/mail/send", `{"to":"bob@example.com","subject":"Hi","body":"Hello"}`, u.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	res := decode[services.SendResult](t, w)
	if res.Success || res.Error != "relay down" {
		t.Fatalf("unexpected result: %+v", res)
	}
	var n int64
	d.Model(&models.Email{}).Where("folder = ?", models.FolderSent).Count(&n)
	if n != 0 {
		t.Fatalf("failed send stored %d sent copies", n)
	}
}

func TestMailDeleteTwicePurges(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewMailHandler(services.New(d, nil, nil))
	e := models.Email{From: "a@example.com", To: u.Email, Subject: "Hello", Folder: models.FolderInbox, UserID: u.ID}
	d.Create(&e)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.Delete(w, withID(jsonRequest(http.MethodPost, "/mail/x/delete", "", u.ID), e.ID))
		if w.Code != http.StatusOK {
			t.Fatalf("delete %d: expected 200 got %d", i, w.Code)
		}
	}
	var n int64
	d.Model(&models.Email{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected purge, %d emails left", n)
	}
}

func TestDashboardJSON(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	won := 500.0
	d.Create(&models.Lead{Title: "Won", Status: models.LeadWon, Value: &won, UserID: u.ID})
	d.Create(&models.Lead{Title: "Open", Status: models.LeadNew, UserID: u.ID})
	h := NewDashboardHandler(services.New(d, nil, nil))

	w := httptest.NewRecorder()
	h.Show(w, jsonRequest(http.MethodGet, "/dashboard", "", u.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	st := decode[services.Stats](t, w)
	if st.TotalLeads != 2 || st.WonLeads != 1 || st.TotalRevenue != 500 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if len(st.RevenueChart) != 6 {
		t.Fatalf("chart has %d months", len(st.RevenueChart))
	}
}

func TestChartBars(t *testing.T) {
	bars := chartBars([]services.MonthRevenue{{Month: "Jan", Revenue: 0}, {Month: "Feb", Revenue: 50}, {Month: "Mar", Revenue: 200}})
	if bars[0].Height != 0 || bars[1].Height != 25 || bars[2].Height != 100 {
		t.Fatalf("unexpected heights: %+v", bars)
	}
	if got := chartBars([]services.MonthRevenue{{Month: "Jan"}}); got[0].Height != 0 {
		t.Fatalf("all-zero chart should be flat: %+v", got)
	}
}

func TestSettingsChangePassword(t *testing.T) {
	d := setupTestDB(t)
	users := services.NewUserService(d)
	u, err := users.Register(context.Background(), services.RegisterInput{Name: "Lin", Email: "lin@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	h := NewSettingsHandler(users)

	w := httptest.NewRecorder()
	h.ChangePassword(w, jsonRequest(http.MethodPost, "/settings/password", `{"current_password":"nope","new_password":"secret2"}`, u.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong current: expected 400 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ChangePassword(w, jsonRequest(http.MethodPost, "/settings/password", `{"current_password":"secret1","new_password":"secret2"}`, u.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if _, err := users.Authenticate(context.Background(), "lin@example.com", "secret2"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestLocalReferer(t *testing.T) {
	cases := map[string]string{
		"":                           "/fallback",
		"/leads/3":                   "/leads/3",
		"http://example.com/leads/3": "/leads/3",
		"//evil.example.com/x":       "/fallback",
		"https://evil.example.com/x": "/fallback",
	}
	for ref, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/activities/1/toggle", nil)
		if ref != "" {
			req.Header.Set("Referer", ref)
		}
		if got := localReferer(req, "/fallback"); got != want {
			t.Errorf("localReferer(%q) = %q, want %q", ref, got, want)
		}
	}
}

// formRequest builds a browser form post carrying a session.
func formRequest(target string, form url.Values, uid uint) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(auth.WithUserID(req.Context(), uid))
}

func TestLeadUpdate_MalformedFormInput(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	value := 1200.0
	closeDate := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	lead := models.Lead{Title: "Renewal", Status: models.LeadNew, Value: &value, ExpectedCloseDate: &closeDate, UserID: u.ID}
	if err := d.Create(&lead).Error; err != nil {
		t.Fatal(err)
	}
	h := NewLeadHandler(services.New(d, nil, nil))

	form := url.Values{
		"title":               {"Renamed"},
		"status":              {"NEW"},
		"value":               {"12abc"},
		"expected_close_date": {"2026-13-45"},
	}
	w := httptest.NewRecorder()
	h.Update(w, withID(formRequest("/leads/1", form, u.ID), lead.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected the edit form again, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Invalid date", "Must be a number"} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in body", want)
		}
	}

	var got models.Lead
	d.First(&got, lead.ID)
	if got.Title != "Renewal" || got.Value == nil || *got.Value != 1200 || got.ExpectedCloseDate == nil {
		t.Fatalf("malformed form changed the lead: %+v", got)
	}
}

func TestProductCreate_MalformedNumbers(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	h := NewProductHandler(services.New(d, nil, nil))

	form := url.Values{"name": {"Widget"}, "price": {"ten"}, "quantity": {"4.5"}, "is_active": {"on"}}
	w := httptest.NewRecorder()
	h.Create(w, formRequest("/products", form, u.ID))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Must be a number") {
		t.Fatalf("expected the form with a number error, got %d", w.Code)
	}
	var n int64
	d.Model(&models.Product{}).Count(&n)
	if n != 0 {
		t.Fatalf("malformed product was stored (%d rows)", n)
	}
}

func TestFormParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=1.5&b=x&d=2026-02-03&e=&f=03/02/2026"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := req.ParseForm(); err != nil {
		t.Fatal(err)
	}
	v := validation.Violations{}
	if f := formFloat(req, "a", v); f == nil || *f != 1.5 {
		t.Fatalf("a = %v", f)
	}
	if f := formFloat(req, "b", v); f != nil {
		t.Fatalf("b should be nil, got %v", *f)
	}
	if f := formFloat(req, "missing", v); f != nil {
		t.Fatal("missing float should be nil")
	}
	if d := formDate(req, "d", v); d == nil || d.Day() != 3 {
		t.Fatalf("d = %v", d)
	}
	if d := formDate(req, "e", v); d == nil || !d.IsZero() {
		t.Fatalf("empty date should clear, got %v", d)
	}
	if d := formDate(req, "f", v); d != nil {
		t.Fatalf("malformed date should be nil, got %v", d)
	}
	want := validation.Violations{"b": "invalid_number", "f": "invalid_date"}
	if len(v) != len(want) || v["b"] != want["b"] || v["f"] != want["f"] {
		t.Fatalf("violations = %v", v)
	}
}

func TestQuoteView(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	q := models.Quote{QuoteNumber: "QT-TEST-0001", Subject: "Rollout", Total: 900, Status: models.QuoteDraft, UserID: u.ID}
	if err := d.Create(&q).Error; err != nil {
		t.Fatal(err)
	}
	h := NewQuoteHandler(services.New(d, nil, nil))

	w := httptest.NewRecorder()
	h.View(w, withID(jsonRequest(http.MethodGet, "/quotes/1", "", u.ID), q.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["quote_number"]; got != "QT-TEST-0001" {
		t.Fatalf("quote_number = %v", got)
	}

	w = httptest.NewRecorder()
	h.View(w, withID(jsonRequest(http.MethodGet, "/quotes/99", "", u.ID), 99))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing quote: expected 404 got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/quotes/1", nil)
	req = withID(req.WithContext(auth.WithUserID(req.Context(), u.ID)), q.ID)
	w = httptest.NewRecorder()
	h.View(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/quotes#quote-"+strconv.FormatUint(uint64(q.ID), 10) {
		t.Fatalf("browser view: %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestMailList_OpensOnlyOwnMessage(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d)
	other := &models.User{Name: "Alan", Email: "alan@example.com", Password: "x", Role: models.RoleUser}
	if err := d.Create(other).Error; err != nil {
		t.Fatal(err)
	}
	mine := models.Email{From: "john@acme.com", To: u.Email, Subject: "Timeline", Folder: models.FolderInbox, UserID: u.ID}
	theirs := models.Email{From: "john@acme.com", To: other.Email, Subject: "Private", Folder: models.FolderInbox, UserID: other.ID}
	d.Create(&mine)
	d.Create(&theirs)
	h := NewMailHandler(services.New(d, nil, nil))

	open := func(id uint) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/mail?folder=inbox&id="+strconv.FormatUint(uint64(id), 10), nil)
		req = req.WithContext(auth.WithUserID(req.Context(), u.ID))
		w := httptest.NewRecorder()
		h.List(w, req)
		return w
	}

	if w := open(mine.ID); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var got models.Email
	d.First(&got, mine.ID)
	if !got.Read {
		t.Fatal("opened message should be marked read")
	}

	w := open(theirs.ID)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "Private") {
		t.Fatalf("another user's message leaked into the view")
	}
	d.First(&got, theirs.ID)
	if got.Read {
		t.Fatal("another user's message was marked read")
	}
}
