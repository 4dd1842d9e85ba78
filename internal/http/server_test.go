package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/catalog"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

type testEnv struct {
	t    *testing.T
	srv  *Server
	repo *storage.SQLiteRepository
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}

	tokens := auth.NewTokenService("test-secret-test-secret-test-secret", time.Hour)
	summaries := services.NewSummaryService(repo, time.Minute, nil)
	categories := services.NewCategoryService(repo, summaries)
	if _, err := categories.Seed(context.Background(), cat); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	srv := NewServer(":0", Deps{
		Users:              services.NewUserService(repo, tokens, summaries),
		Tokens:             tokens,
		Entries:            services.NewEntryService(repo, nil, summaries),
		Transactions:       services.NewTransactionService(repo),
		Categories:         categories,
		Recurring:          services.NewRecurringService(repo),
		Objectives:         services.NewObjectiveService(repo, cat, nil),
		Summaries:          summaries,
		Metrics:            metrics.New(),
		Pinger:             repo,
		RateLimitPerMinute: rateLimit,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testEnv{t: t, srv: srv, repo: repo}
}

type result struct {
	status int
	header http.Header
	body   []byte
}

func (r result) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.body, v); err != nil {
		t.Fatalf("decode %s: %v", r.body, err)
	}
}

func (e *testEnv) do(method, path, token string, body any) result {
	e.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			e.t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return result{status: rec.Code, header: rec.Header(), body: rec.Body.Bytes()}
}

func (e *testEnv) register(email string) string {
	e.t.Helper()
	res := e.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ana", "email": email, "password": "correct-horse",
	})
	if res.status != http.StatusCreated {
		e.t.Fatalf("register status = %d: %s", res.status, res.body)
	}
	var s sessionResponse
	res.decode(e.t, &s)
	if s.Token == "" {
		e.t.Fatal("register returned no token")
	}
	return s.Token
}

func (e *testEnv) expect(res result, want int) {
	e.t.Helper()
	if res.status != want {
		e.t.Fatalf("status = %d, want %d: %s", res.status, want, res.body)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, 1000)
	env.register("ana@example.com")

	dup := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "correct-horse",
	})
	env.expect(dup, http.StatusConflict)

	bad := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	})
	env.expect(bad, http.StatusUnauthorized)

	login := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "correct-horse",
	})
	env.expect(login, http.StatusOK)
	var s sessionResponse
	login.decode(t, &s)

	me := env.do(http.MethodGet, "/api/v1/me", s.Token, nil)
	env.expect(me, http.StatusOK)
	var u userResponse
	me.decode(t, &u)
	if u.Email != "ana@example.com" || u.MonthlyBudget != "0.00" {
		t.Errorf("profile = %+v", u)
	}

	upd := env.do(http.MethodPatch, "/api/v1/me", s.Token, map[string]any{"monthly_budget": "1500.00"})
	env.expect(upd, http.StatusOK)
	upd.decode(t, &u)
	if u.MonthlyBudget != "1500.00" || u.Name != "Ana" {
		t.Errorf("updated profile = %+v", u)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, 1000)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.srv.Handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, 1000)
	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}, "password"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "long-enough"}, "email"},
		{"blank name", map[string]string{"name": "   ", "email": "a@example.com", "password": "long-enough"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(http.MethodPost, "/api/v1/auth/register", "", tt.body)
			env.expect(res, http.StatusBadRequest)
			var er errorResponse
			res.decode(t, &er)
			if _, ok := er.Details[tt.field]; !ok {
				t.Errorf("details = %v, want key %q", er.Details, tt.field)
			}
		})
	}

	res := env.do(http.MethodPost, "/api/v1/auth/register", "", `{"name":"A","email":"a@example.com","password":"long-enough","admin":true}`)
	env.expect(res, http.StatusBadRequest)
}

func TestExpenseCRUD(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")
	other := env.register("bob@example.com")

	created := env.do(http.MethodPost, "/api/v1/expenses", token, map[string]any{
		"title": "Groceries", "amount": "42,50", "date": "2025-03-14", "note": "weekly",
	})
	env.expect(created, http.StatusCreated)
	var e entryResponse
	created.decode(t, &e)
	if e.Kind != "expense" || e.Amount != "42.50" || e.AmountCents != 4250 || e.Date != "2025-03-14" {
		t.Fatalf("created = %+v", e)
	}
	path := fmt.Sprintf("/api/v1/expenses/%d", e.ID)

	env.expect(env.do(http.MethodGet, path, token, nil), http.StatusOK)
	env.expect(env.do(http.MethodGet, path, other, nil), http.StatusNotFound)
	env.expect(env.do(http.MethodGet, fmt.Sprintf("/api/v1/incomes/%d", e.ID), token, nil), http.StatusNotFound)

	updated := env.do(http.MethodPut, path, token, map[string]any{
		"title": "Groceries and wine", "amount": 55.1, "date": "2025-03-15",
	})
	env.expect(updated, http.StatusOK)
	updated.decode(t, &e)
	if e.Title != "Groceries and wine" || e.Amount != "55.10" || e.Date != "2025-03-15" {
		t.Errorf("updated = %+v", e)
	}

	env.expect(env.do(http.MethodPut, path, other, map[string]any{
		"title": "x", "amount": "1", "date": "2025-03-15",
	}), http.StatusNotFound)

	list := env.do(http.MethodGet, "/api/v1/expenses", token, nil)
	env.expect(list, http.StatusOK)
	var page transactionPageResponse
	list.decode(t, &page)
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("list = %+v", page)
	}

	env.expect(env.do(http.MethodDelete, path, other, nil), http.StatusNotFound)
	env.expect(env.do(http.MethodDelete, path, token, nil), http.StatusNoContent)
	env.expect(env.do(http.MethodGet, path, token, nil), http.StatusNotFound)
}

func TestEntryValidation(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"zero amount", map[string]any{"title": "x", "amount": "0", "date": "2025-01-01"}, "amount"},
		{"negative amount", map[string]any{"title": "x", "amount": "-3", "date": "2025-01-01"}, "amount"},
		{"bad date", map[string]any{"title": "x", "amount": "3", "date": "01/02/2025"}, "date"},
		{"missing title", map[string]any{"amount": "3", "date": "2025-01-01"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(http.MethodPost, "/api/v1/incomes", token, tt.body)
			env.expect(res, http.StatusBadRequest)
			var er errorResponse
			res.decode(t, &er)
			if _, ok := er.Details[tt.field]; !ok {
				t.Errorf("details = %v, want key %q", er.Details, tt.field)
			}
		})
	}

	env.expect(env.do(http.MethodPost, "/api/v1/incomes", token, "not json"), http.StatusBadRequest)
	env.expect(env.do(http.MethodGet, "/api/v1/incomes/abc", token, nil), http.StatusNotFound)
}

func TestTransactionsFilter(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")

	for _, tc := range []struct {
		path, title, amount, date string
	}{
		{"/api/v1/expenses", "Rent", "800", "2025-02-01"},
		{"/api/v1/expenses", "Coffee", "3.20", "2025-02-10"},
		{"/api/v1/incomes", "Salary", "2500", "2025-02-27"},
		{"/api/v1/expenses", "Train", "12", "2025-03-02"},
	} {
		env.expect(env.do(http.MethodPost, tc.path, token, map[string]any{
			"title": tc.title, "amount": tc.amount, "date": tc.date,
		}), http.StatusCreated)
	}

	tests := []struct {
		name   string
		query  string
		total  int
		titles []string
	}{
		{"all newest first", "", 4, []string{"Train", "Salary", "Coffee", "Rent"}},
		{"by kind", "?kind=income", 1, []string{"Salary"}},
		{"date range", "?from=2025-02-01&to=2025-02-28&sort=amount&order=asc", 3, []string{"Coffee", "Rent", "Salary"}},
		{"amount range", "?min_amount=10&max_amount=900&kind=expense", 2, []string{"Train", "Rent"}},
		{"text search", "?q=coff", 1, []string{"Coffee"}},
		{"paged", "?limit=2&offset=1", 4, []string{"Salary", "Coffee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(http.MethodGet, "/api/v1/transactions"+tt.query, token, nil)
			env.expect(res, http.StatusOK)
			var page transactionPageResponse
			res.decode(t, &page)
			if page.Total != tt.total {
				t.Errorf("total = %d, want %d", page.Total, tt.total)
			}
			var got []string
			for _, it := range page.Items {
				got = append(got, it.Title)
			}
			if strings.Join(got, ",") != strings.Join(tt.titles, ",") {
				t.Errorf("titles = %v, want %v", got, tt.titles)
			}
		})
	}

	env.expect(env.do(http.MethodGet, "/api/v1/transactions?kind=gift", token, nil), http.StatusBadRequest)
	env.expect(env.do(http.MethodGet, "/api/v1/transactions?from=yesterday", token, nil), http.StatusBadRequest)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")
	other := env.register("bob@example.com")

	res := env.do(http.MethodGet, "/api/v1/categories?kind=income", token, nil)
	env.expect(res, http.StatusOK)
	var list []categoryResponse
	res.decode(t, &list)
	if len(list) == 0 {
		t.Fatal("expected seeded income categories")
	}
	system := list[0]
	if !system.System || system.Kind != "income" {
		t.Fatalf("first category = %+v", system)
	}

	env.expect(env.do(http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Pets"}), http.StatusBadRequest)

	created := env.do(http.MethodPost, "/api/v1/categories", token, map[string]any{
		"name": "Pets", "kind": "expense", "monthly_limit": "60",
	})
	env.expect(created, http.StatusCreated)
	var c categoryResponse
	created.decode(t, &c)
	if c.System || c.MonthlyLimit != "60.00" {
		t.Errorf("created = %+v", c)
	}

	path := fmt.Sprintf("/api/v1/categories/%d", c.ID)
	updated := env.do(http.MethodPut, path, token, map[string]any{"name": "Pet care", "monthly_limit": 0})
	env.expect(updated, http.StatusOK)
	updated.decode(t, &c)
	if c.Name != "Pet care" || c.MonthlyLimit != "0.00" {
		t.Errorf("updated = %+v", c)
	}

	sysPath := fmt.Sprintf("/api/v1/categories/%d", system.ID)
	env.expect(env.do(http.MethodPut, sysPath, token, map[string]any{"name": "Mine"}), http.StatusForbidden)
	env.expect(env.do(http.MethodDelete, sysPath, token, nil), http.StatusForbidden)
	env.expect(env.do(http.MethodDelete, path, other, nil), http.StatusNotFound)

	// Entries may not use another kind's category.
	env.expect(env.do(http.MethodPost, "/api/v1/incomes", token, map[string]any{
		"title": "x", "amount": "1", "date": "2025-01-01", "category_id": c.ID,
	}), http.StatusBadRequest)

	env.expect(env.do(http.MethodDelete, path, token, nil), http.StatusNoContent)
}

func TestRecurringPayments(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")

	env.expect(env.do(http.MethodPost, "/api/v1/recurring-payments", token, map[string]any{
		"title": "Gym", "amount": "30", "kind": "expense", "every": "hourly", "start_date": "2025-01-01",
	}), http.StatusBadRequest)

	env.expect(env.do(http.MethodPost, "/api/v1/recurring-payments", token, map[string]any{
		"title": "Gym", "amount": "30", "kind": "expense", "every": "monthly",
		"start_date": "2025-05-01", "end_date": "2025-01-01",
	}), http.StatusBadRequest)

	created := env.do(http.MethodPost, "/api/v1/recurring-payments", token, map[string]any{
		"title": "Gym", "amount": "30", "kind": "expense", "every": "monthly", "start_date": "2025-01-31",
	})
	env.expect(created, http.StatusCreated)
	var rp recurringResponse
	created.decode(t, &rp)
	if !rp.Active || rp.Every != "monthly" || rp.Amount != "30.00" || rp.EndDate != "" {
		t.Fatalf("created = %+v", rp)
	}

	path := fmt.Sprintf("/api/v1/recurring-payments/%d", rp.ID)
	updated := env.do(http.MethodPut, path, token, map[string]any{
		"title": "Gym", "amount": "35", "kind": "expense", "every": "monthly",
		"start_date": "2025-01-31", "active": false,
	})
	env.expect(updated, http.StatusOK)
	updated.decode(t, &rp)
	if rp.Active || rp.Amount != "35.00" {
		t.Errorf("updated = %+v", rp)
	}

	res := env.do(http.MethodGet, "/api/v1/recurring-payments", token, nil)
	env.expect(res, http.StatusOK)
	var list []recurringResponse
	res.decode(t, &list)
	if len(list) != 1 {
		t.Errorf("list len = %d", len(list))
	}

	started := time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC)
	run, err := env.repo.StartRun(context.Background(), core.RecurringRun{StartedAt: started, RunDate: core.NewDate(2025, 2, 1)})
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	run.FinishedAt, run.Checked, run.Created, run.Failed = started.Add(time.Second), 7, 5, 2
	run.Status, run.Error = core.RunPartial, "recurring payment 41 of user 9: category missing"
	if err := env.repo.FinishRun(context.Background(), run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs := env.do(http.MethodGet, "/api/v1/recurring-runs", token, nil)
	env.expect(runs, http.StatusOK)
	var logRows []map[string]any
	runs.decode(t, &logRows)
	if len(logRows) != 1 || logRows[0]["status"] != "partial" || logRows[0]["run_date"] != "2025-02-01" {
		t.Fatalf("runs = %v", logRows)
	}
	for _, key := range []string{"checked", "created", "skipped", "failed", "error"} {
		if _, ok := logRows[0][key]; ok {
			t.Errorf("run log exposes %q to users: %v", key, logRows[0])
		}
	}

	env.expect(env.do(http.MethodDelete, path, token, nil), http.StatusNoContent)
	env.expect(env.do(http.MethodGet, path, token, nil), http.StatusNotFound)
}

func TestObjectivesAndAchievements(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")

	env.expect(env.do(http.MethodPost, "/api/v1/objectives", token, map[string]any{
		"title": "Save", "kind": "savings_target", "target": "100", "year": 2024, "month": 13,
	}), http.StatusBadRequest)

	created := env.do(http.MethodPost, "/api/v1/objectives", token, map[string]any{
		"title": "Cheap January", "kind": "spending_limit", "target": "100", "year": 2024, "month": 1, "points": 25,
	})
	env.expect(created, http.StatusCreated)
	var o objectiveResponse
	created.decode(t, &o)
	if o.Origin != "user" || o.Status != "active" || o.Period != "2024-01" {
		t.Fatalf("created = %+v", o)
	}

	env.expect(env.do(http.MethodPost, "/api/v1/expenses", token, map[string]any{
		"title": "Snack", "amount": "20", "date": "2024-01-10",
	}), http.StatusCreated)

	eval := env.do(http.MethodPost, "/api/v1/objectives/evaluate?year=2024&month=1", token, nil)
	env.expect(eval, http.StatusOK)
	var report evaluationResponse
	eval.decode(t, &report)
	if report.Evaluated != 1 || report.Achieved != 1 || len(report.Objectives) != 1 || report.Objectives[0].Progress != "20.00" {
		t.Fatalf("report = %+v", report)
	}

	again := env.do(http.MethodPost, "/api/v1/objectives/evaluate?year=2024&month=1", token, nil)
	again.decode(t, &report)
	if report.Evaluated != 0 || report.Achieved != 0 {
		t.Errorf("second evaluation = %+v", report)
	}

	ach := env.do(http.MethodGet, "/api/v1/achievements", token, nil)
	env.expect(ach, http.StatusOK)
	var a achievementsResponse
	ach.decode(t, &a)
	if a.Points != 25 || len(a.Items) != 1 || a.Items[0].Event != "achieved" {
		t.Errorf("achievements = %+v", a)
	}

	list := env.do(http.MethodGet, "/api/v1/objectives?year=2024&month=2", token, nil)
	var objectives []objectiveResponse
	list.decode(t, &objectives)
	if len(objectives) != 0 {
		t.Errorf("february objectives = %d", len(objectives))
	}

	path := fmt.Sprintf("/api/v1/objectives/%d", o.ID)
	env.expect(env.do(http.MethodGet, path, token, nil), http.StatusOK)
	env.expect(env.do(http.MethodDelete, path, token, nil), http.StatusNoContent)
	env.expect(env.do(http.MethodGet, path, token, nil), http.StatusNotFound)
}

func TestSummaryAndBudgets(t *testing.T) {
	env := newTestEnv(t, 1000)
	token := env.register("ana@example.com")
	env.expect(env.do(http.MethodPatch, "/api/v1/me", token, map[string]any{"monthly_budget": "100"}), http.StatusOK)

	created := env.do(http.MethodPost, "/api/v1/categories", token, map[string]any{
		"name": "Books", "kind": "expense", "monthly_limit": "30",
	})
	var c categoryResponse
	created.decode(t, &c)

	env.expect(env.do(http.MethodPost, "/api/v1/expenses", token, map[string]any{
		"title": "Novel", "amount": "45", "date": "2025-06-03", "category_id": c.ID,
	}), http.StatusCreated)
	env.expect(env.do(http.MethodPost, "/api/v1/incomes", token, map[string]any{
		"title": "Gift", "amount": "200", "date": "2025-06-05",
	}), http.StatusCreated)

	res := env.do(http.MethodGet, "/api/v1/summary?year=2025&month=6", token, nil)
	env.expect(res, http.StatusOK)
	var sum summaryResponse
	res.decode(t, &sum)
	if sum.Income != "200.00" || sum.Expense != "45.00" || sum.Balance != "155.00" || sum.BudgetRemaining != "55.00" {
		t.Errorf("summary = %+v", sum)
	}

	// A cached summary is dropped when the month changes.
	env.expect(env.do(http.MethodPost, "/api/v1/expenses", token, map[string]any{
		"title": "Comic", "amount": "5", "date": "2025-06-20", "category_id": c.ID,
	}), http.StatusCreated)
	env.do(http.MethodGet, "/api/v1/summary?year=2025&month=6", token, nil).decode(t, &sum)
	if sum.Expense != "50.00" {
		t.Errorf("expense after new entry = %s", sum.Expense)
	}

	budgets := env.do(http.MethodGet, "/api/v1/budgets?year=2025&month=6", token, nil)
	env.expect(budgets, http.StatusOK)
	var b struct {
		Period string                  `json:"period"`
		Items  []categorySpendResponse `json:"items"`
	}
	budgets.decode(t, &b)
	if b.Period != "2025-06" || len(b.Items) != 1 || !b.Items[0].OverBudget || b.Items[0].Remaining != "-20.00" {
		t.Errorf("budgets = %+v", b)
	}

	env.expect(env.do(http.MethodGet, "/api/v1/summary?year=2025&month=0", token, nil), http.StatusBadRequest)
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, 1000)

	res := env.do(http.MethodGet, "/healthz", "", nil)
	env.expect(res, http.StatusOK)
	if res.header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if res.header.Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}

	env.expect(env.do(http.MethodGet, "/readyz", "", nil), http.StatusOK)
	env.expect(env.do(http.MethodGet, "/nope", "", nil), http.StatusNotFound)
	env.expect(env.do(http.MethodDelete, "/healthz", "", nil), http.StatusMethodNotAllowed)

	m := env.do(http.MethodGet, "/metrics", "", nil)
	env.expect(m, http.StatusOK)
	if !strings.Contains(string(m.body), `finanzas_http_requests_total{method="GET",route="/healthz",status="200"}`) {
		t.Errorf("metrics missing http counter:\n%s", m.body)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

func TestReadyReportsDatabaseFailure(t *testing.T) {
	env := newTestEnv(t, 1000)
	env.srv.deps.Pinger = failingPinger{}
	env.expect(env.do(http.MethodGet, "/readyz", "", nil), http.StatusServiceUnavailable)
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	env := newTestEnv(t, 2)
	body := map[string]string{"email": "x@example.com", "password": "whatever-pass"}

	env.expect(env.do(http.MethodPost, "/api/v1/auth/login", "", body), http.StatusUnauthorized)
	env.expect(env.do(http.MethodPost, "/api/v1/auth/login", "", body), http.StatusUnauthorized)

	res := env.do(http.MethodPost, "/api/v1/auth/login", "", body)
	env.expect(res, http.StatusTooManyRequests)
	if res.header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Reads are not limited.
	for range 5 {
		env.expect(env.do(http.MethodGet, "/healthz", "", nil), http.StatusOK)
	}
}
