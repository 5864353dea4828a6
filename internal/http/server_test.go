package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"divebooks/internal/auth"
	"divebooks/internal/core"
	"divebooks/internal/ledger/memory"
)

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewServer(":0", store, store, opts), store
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response %q is not a message body: %v", rec.Body.String(), err)
	}
	return body.Message
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rec := doJSON(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestListEmptyLedgerIsEmptyArray(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestCreateAndListRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodPost, "/transactions", `{
		"type": "income",
		"category": "Dives",
		"subcategory": "Fun dive",
		"amount": 2400.50,
		"currency": "EGP",
		"paymentMethod": "cash",
		"status": "paid",
		"description": "two divers",
		"date": "2026-05-10T09:00:00Z",
		"createdBy": "maha"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Message     string          `json:"message"`
		Transaction transactionJSON `json:"transaction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Message != "Transaction created." {
		t.Errorf("message = %q", created.Message)
	}
	if created.Transaction.ID == "" {
		t.Error("created transaction must carry its id")
	}
	if created.Transaction.Amount != 2400.50 {
		t.Errorf("amount = %v, want 2400.50", created.Transaction.Amount)
	}

	rec = doJSON(t, srv, http.MethodGet, "/transactions", "")
	var list []transactionJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d entries", len(list))
	}
	got := list[0]
	if got.Category != "Dives" || got.Subcategory != "Fun dive" || got.CreatedBy != "maha" {
		t.Errorf("listed transaction = %+v", got)
	}
	if got.PaymentMethod != "cash" || got.Status != "paid" || got.Currency != "EGP" {
		t.Errorf("listed transaction = %+v", got)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"type":"expense","category":"Fuel","amount":50}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Transaction transactionJSON `json:"transaction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tx := created.Transaction
	if tx.Currency != "EGP" || tx.PaymentMethod != "cash" || tx.Status != "paid" {
		t.Errorf("defaults not applied: %+v", tx)
	}
	if tx.Date == "" {
		t.Error("date must default to now")
	}
}

func TestCreateIncompleteData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"not json", `{{{`},
		{"missing type", `{"category":"Fuel","amount":50}`},
		{"missing category", `{"type":"expense","amount":50}`},
		{"zero amount", `{"type":"expense","category":"Fuel","amount":0}`},
		{"negative amount", `{"type":"expense","category":"Fuel","amount":-5}`},
		{"bad currency", `{"type":"expense","category":"Fuel","amount":5,"currency":"BTC"}`},
		{"bad date", `{"type":"expense","category":"Fuel","amount":5,"date":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, Options{})
			rec := doJSON(t, srv, http.MethodPost, "/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := message(t, rec); got != "Unable to create transaction. Data is incomplete." {
				t.Errorf("message = %q", got)
			}
		})
	}
}

func TestCreateAcceptsAlternateDateLayouts(t *testing.T) {
	for _, date := range []string{"2026-05-10T09:00:00Z", "2026-05-10 09:00:00", "2026-05-10"} {
		srv, _ := newTestServer(t, Options{})
		rec := doJSON(t, srv, http.MethodPost, "/transactions",
			`{"type":"expense","category":"Fuel","amount":5,"date":"`+date+`"}`)
		if rec.Code != http.StatusCreated {
			t.Errorf("date %q: status = %d, body %s", date, rec.Code, rec.Body.String())
		}
	}
}

func TestUpdateFullReplace(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	created, err := store.CreateTransaction(context.Background(), core.Transaction{
		Type:        core.Expense,
		Category:    "Fuel",
		Subcategory: "Boat",
		Amount:      core.Money{Cents: 5000},
		Currency:    core.EGP,
		Description: "jerrycans",
		Date:        time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "maha",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The update omits subcategory and description; a PUT is a full replace,
	// so they come back empty.
	rec := doJSON(t, srv, http.MethodPut, "/transactions",
		`{"id":"`+created.ID+`","type":"expense","category":"Equipment","amount":75,"currency":"USD","date":"2026-05-11"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Transaction updated." {
		t.Errorf("message = %q", got)
	}

	got, _ := store.GetTransaction(context.Background(), created.ID)
	if got.Category != "Equipment" || got.Currency != core.USD || got.Amount.Cents != 7500 {
		t.Errorf("updated transaction = %+v", got)
	}
	if got.Subcategory != "" || got.Description != "" {
		t.Errorf("omitted fields must be cleared, got %+v", got)
	}
	if got.CreatedBy != "maha" {
		t.Errorf("createdBy = %q, must survive updates", got.CreatedBy)
	}
}

func TestUpdateRequiresID(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodPut, "/transactions",
		`{"type":"expense","category":"Fuel","amount":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := message(t, rec); got != "Unable to update transaction. ID is required." {
		t.Errorf("message = %q", got)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodPut, "/transactions",
		`{"id":"ghost","type":"expense","category":"Fuel","amount":5,"date":"2026-05-10"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := message(t, rec); got != "Transaction not found." {
		t.Errorf("message = %q", got)
	}
}

func TestDelete(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	created, _ := store.CreateTransaction(context.Background(), core.Transaction{
		Type:     core.Expense,
		Category: "Fuel",
		Amount:   core.Money{Cents: 100},
		Date:     time.Now(),
	})

	rec := doJSON(t, srv, http.MethodDelete, "/transactions?id="+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Transaction deleted." {
		t.Errorf("message = %q", got)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/transactions?id="+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestDeleteWithBodyID(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	created, _ := store.CreateTransaction(context.Background(), core.Transaction{
		Type:     core.Expense,
		Category: "Fuel",
		Amount:   core.Money{Cents: 100},
		Date:     time.Now(),
	})
	rec := doJSON(t, srv, http.MethodDelete, "/transactions", `{"id":"`+created.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteRequiresID(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodDelete, "/transactions", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodPatch, "/transactions", `{}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := message(t, rec); got != "Method not allowed." {
		t.Errorf("message = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodOptions, "/transactions", nil)
	req.Header.Set("Origin", "https://books.example.com")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://books.example.com" {
		t.Errorf("allow-origin = %q, must echo the origin", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
		t.Errorf("allow-methods = %q", got)
	}
}

func seedUser(t *testing.T, store *memory.Store, username, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := store.CreateUser(context.Background(), core.User{
		Username:     username,
		PasswordHash: hash,
		Name:         "Maha",
		Role:         core.RoleOwner,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestLogin(t *testing.T) {
	srv, store := newTestServer(t, Options{JWTSecret: "test-secret", TokenTTL: time.Hour})
	seedUser(t, store, "maha", "reef1234")

	rec := doJSON(t, srv, http.MethodPost, "/auth/login", `{"username":"maha","password":"reef1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Login successful." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Token == "" {
		t.Error("login must return a token")
	}
	if resp.User.Username != "maha" || resp.User.Role != "owner" {
		t.Errorf("user = %+v", resp.User)
	}

	claims, err := auth.ParseToken(resp.Token, []byte("test-secret"))
	if err != nil {
		t.Fatalf("returned token does not parse: %v", err)
	}
	if claims.Username != "maha" {
		t.Errorf("token username = %s", claims.Username)
	}
}

func TestLoginMissingFields(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	for _, body := range []string{`{}`, `{"username":"maha"}`, `{"password":"x"}`, `not json`} {
		rec := doJSON(t, srv, http.MethodPost, "/auth/login", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
		if got := message(t, rec); got != "Username and password required." {
			t.Errorf("body %q: message = %q", body, got)
		}
	}
}

func TestLoginBadCredentialsLookAlike(t *testing.T) {
	srv, store := newTestServer(t, Options{JWTSecret: "s"})
	seedUser(t, store, "maha", "reef1234")

	unknownUser := doJSON(t, srv, http.MethodPost, "/auth/login", `{"username":"ghost","password":"reef1234"}`)
	wrongPassword := doJSON(t, srv, http.MethodPost, "/auth/login", `{"username":"maha","password":"wrong"}`)

	for _, rec := range []*httptest.ResponseRecorder{unknownUser, wrongPassword} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if got := message(t, rec); got != "Invalid credentials." {
			t.Errorf("message = %q", got)
		}
	}
	// Same status and same body: no account probing.
	if unknownUser.Body.String() != wrongPassword.Body.String() {
		t.Error("unknown user and wrong password must be indistinguishable")
	}
}

func TestLoginMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodGet, "/auth/login", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestAuthRequiredGate(t *testing.T) {
	srv, store := newTestServer(t, Options{JWTSecret: "s", TokenTTL: time.Hour, AuthRequired: true})
	seedUser(t, store, "maha", "reef1234")

	rec := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	login := doJSON(t, srv, http.MethodPost, "/auth/login", `{"username":"maha","password":"reef1234"}`)
	var resp loginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	srv.Handler.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body %s", out.Code, out.Body.String())
	}
}

func TestCreateAttributesAuthorFromToken(t *testing.T) {
	srv, store := newTestServer(t, Options{JWTSecret: "s", TokenTTL: time.Hour, AuthRequired: true})
	seedUser(t, store, "maha", "reef1234")

	login := doJSON(t, srv, http.MethodPost, "/auth/login", `{"username":"maha","password":"reef1234"}`)
	var resp loginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/transactions",
		strings.NewReader(`{"type":"expense","category":"Fuel","amount":5}`))
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	srv.Handler.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", out.Code, out.Body.String())
	}

	txs, _ := store.ListTransactions(context.Background())
	if len(txs) != 1 || txs[0].CreatedBy != "maha" {
		t.Errorf("createdBy = %+v, want maha", txs)
	}
}

func TestDashboardMetrics(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	now := time.Now().UTC()
	for _, tx := range []core.Transaction{
		{Type: core.Income, Category: "Dives", Amount: core.Money{Cents: 10000}, Currency: core.EGP, Date: now},
		{Type: core.Income, Category: "Courses", Amount: core.Money{Cents: 1000}, Currency: core.USD, Date: now},
		{Type: core.Expense, Category: "Fuel", Amount: core.Money{Cents: 5000}, Currency: core.EGP, Date: now},
	} {
		if _, err := store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/dashboard/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m dashboardMetricsJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.TodayIncome) != 2 {
		t.Errorf("today income = %+v, want one entry per currency", m.TodayIncome)
	}
	if len(m.TodayExpenses) != 1 || m.TodayExpenses[0].Amount != 50 {
		t.Errorf("today expenses = %+v", m.TodayExpenses)
	}
	if len(m.Recent) != 3 {
		t.Errorf("recent = %d entries", len(m.Recent))
	}
}

func TestCategoryReport(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, tx := range []core.Transaction{
		{Type: core.Expense, Category: "Fuel", Amount: core.Money{Cents: 10000}, Currency: core.EGP, Date: day},
		{Type: core.Expense, Category: "Equipment", Amount: core.Money{Cents: 1000}, Currency: core.USD, Date: day},
		{Type: core.Expense, Category: "Fuel", Amount: core.Money{Cents: 2000}, Currency: core.EGP, Date: day.AddDate(0, -2, 0)},
	} {
		if _, err := store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/reports/categories?from=2026-05-01&to=2026-05-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rows []categoryTotalJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (March entry excluded)", len(rows))
	}
	// Equipment: 10 USD at 31.25 = 312.50 approx EGP, beats Fuel's 100 EGP.
	if rows[0].Category != "Equipment" || rows[1].Category != "Fuel" {
		t.Errorf("order = %s, %s", rows[0].Category, rows[1].Category)
	}

	rec = doJSON(t, srv, http.MethodGet, "/reports/categories?type=banana", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}
}
