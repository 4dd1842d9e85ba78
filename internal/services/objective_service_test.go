package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/catalog"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
)

func newObjectiveService(t *testing.T, store ObjectiveStore) *ObjectiveService {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	return NewObjectiveService(store, cat, metrics.New())
}

func TestGenerateSystemObjectives(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "g@example.com", 150000)
	createCategory(t, repo, user.ID, "Dining", core.KindExpense, 20000)
	createCategory(t, repo, user.ID, "Books", core.KindExpense, 0)
	addEntry(t, repo, user.ID, core.KindIncome, 250000, core.NewDate(2025, 4, 27), nil)

	svc := newObjectiveService(t, repo)
	may := core.Period{Year: 2025, Month: 5}

	n, err := svc.GenerateSystem(ctx, user.ID, may)
	if err != nil {
		t.Fatalf("GenerateSystem() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("GenerateSystem() created %d, want 3", n)
	}

	again, err := svc.GenerateSystem(ctx, user.ID, may)
	if err != nil || again != 0 {
		t.Fatalf("second GenerateSystem() = %d, %v; want 0, nil", again, err)
	}

	list, _ := svc.List(ctx, user.ID, may)
	byKey := map[string]core.Objective{}
	for _, o := range list {
		if o.Origin != core.OriginSystem || o.Status != core.ObjectiveActive {
			t.Errorf("unexpected objective %+v", o)
		}
		byKey[o.TemplateKey] = o
	}
	if o := byKey["monthly_budget"]; o.Target.Cents != 150000 || o.Kind != core.SpendingLimit {
		t.Errorf("monthly_budget = %+v", o)
	}
	if o := byKey["category_limits"]; o.Target.Cents != 20000 || o.CategoryID == nil || o.Title != "Keep Dining under its limit" {
		t.Errorf("category_limits = %+v", o)
	}
	if o := byKey["save_share_of_income"]; o.Target.Cents != 25000 || o.Kind != core.SavingsTarget || o.Title != "Save 10% of last month's income" {
		t.Errorf("save_share_of_income = %+v", o)
	}
}

func TestGenerateSystemSkipsMissingSources(t *testing.T) {
	repo := newTestRepo(t)
	user := createUser(t, repo, "none@example.com", 0)
	svc := newObjectiveService(t, repo)

	n, err := svc.GenerateSystem(context.Background(), user.ID, core.Period{Year: 2025, Month: 5})
	if err != nil || n != 0 {
		t.Errorf("GenerateSystem() = %d, %v; want 0, nil", n, err)
	}
}

func TestEvaluateObjectives(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "ev@example.com", 0)
	dining := createCategory(t, repo, user.ID, "Dining", core.KindExpense, 0)
	june := core.Period{Year: 2025, Month: 6}

	midMonth := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newObjectiveService(t, repo)

	mk := func(title string, kind core.ObjectiveKind, target int64, categoryID *int64) core.Objective {
		o, err := svc.Create(ctx, core.Objective{
			UserID: user.ID, Title: title, Kind: kind, CategoryID: categoryID,
			Target: core.Money{Cents: target}, Period: june, Points: 50,
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
		return o
	}
	diningCap := mk("Dining cap", core.SpendingLimit, 10000, &dining.ID)
	totalCap := mk("Total cap", core.SpendingLimit, 100000, nil)
	save := mk("Save", core.SavingsTarget, 50000, nil)
	bigSave := mk("Save a lot", core.SavingsTarget, 500000, nil)

	addEntry(t, repo, user.ID, core.KindExpense, 12000, core.NewDate(2025, 6, 3), &dining.ID)
	addEntry(t, repo, user.ID, core.KindExpense, 8000, core.NewDate(2025, 6, 4), nil)
	addEntry(t, repo, user.ID, core.KindIncome, 90000, core.NewDate(2025, 6, 1), nil)
	addEntry(t, repo, user.ID, core.KindExpense, 99999, core.NewDate(2025, 7, 1), nil) // outside the month

	objectives, report, err := svc.Evaluate(ctx, user.ID, june, midMonth)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// Dining exceeded its cap; savings of 70000 met the 50000 target.
	if report.Evaluated != 4 || report.Failed != 1 || report.Achieved != 1 {
		t.Fatalf("mid-month report = %+v", report)
	}
	status := map[int64]core.ObjectiveStatus{}
	for _, o := range objectives {
		status[o.ID] = o.Status
	}
	if status[diningCap.ID] != core.ObjectiveFailed || status[save.ID] != core.ObjectiveAchieved ||
		status[totalCap.ID] != core.ObjectiveActive || status[bigSave.ID] != core.ObjectiveActive {
		t.Errorf("mid-month statuses = %v", status)
	}

	reloaded, _ := svc.Get(ctx, user.ID, totalCap.ID)
	if reloaded.Progress.Cents != 20000 || reloaded.EvaluatedAt.IsZero() {
		t.Errorf("total cap progress = %+v", reloaded)
	}

	// Re-evaluating the same day changes nothing.
	if _, report, _ = svc.Evaluate(ctx, user.ID, june, midMonth); report.Achieved+report.Failed != 0 {
		t.Errorf("re-evaluation report = %+v", report)
	}

	_, report, err = svc.Evaluate(ctx, user.ID, june, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("month-end Evaluate() error = %v", err)
	}
	if report.Evaluated != 2 || report.Achieved != 1 || report.Failed != 1 {
		t.Errorf("month-end report = %+v", report)
	}

	points, logs, err := svc.Achievements(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("Achievements() error = %v", err)
	}
	if points != 100 || len(logs) != 4 {
		t.Errorf("points = %d, logs = %d; want 100, 4", points, len(logs))
	}
	for _, l := range logs {
		if l.Event == core.ObjectiveFailed && l.Points != 0 {
			t.Errorf("failed objective awarded %d points", l.Points)
		}
	}
}

func TestCreateObjectiveValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "cv@example.com", 0)
	salary := createCategory(t, repo, user.ID, "Salary", core.KindIncome, 0)
	svc := newObjectiveService(t, repo)

	valid := core.Objective{
		UserID: user.ID, Title: "Cap", Kind: core.SpendingLimit,
		Target: core.Money{Cents: 100}, Period: core.Period{Year: 2025, Month: 1}, Points: 10,
	}
	tests := []struct {
		name   string
		mutate func(*core.Objective)
	}{
		{"empty title", func(o *core.Objective) { o.Title = "" }},
		{"bad kind", func(o *core.Objective) { o.Kind = "streak" }},
		{"zero target", func(o *core.Objective) { o.Target = core.Money{} }},
		{"bad period", func(o *core.Objective) { o.Period = core.Period{Year: 2025, Month: 13} }},
		{"too many points", func(o *core.Objective) { o.Points = core.MaxObjectivePoints + 1 }},
		{"income category", func(o *core.Objective) { o.CategoryID = &salary.ID }},
		{"scoped savings", func(o *core.Objective) { o.Kind = core.SavingsTarget; o.CategoryID = &salary.ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			if _, err := svc.Create(ctx, o); !core.IsValidation(err) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}

	created, err := svc.Create(ctx, valid)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Origin != core.OriginUser || created.Status != core.ObjectiveActive {
		t.Errorf("Create() = %+v", created)
	}
	if err := svc.Delete(ctx, user.ID+1, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() by another user error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, user.ID, created.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestGenerateAndEvaluateAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := createUser(t, repo, "a@example.com", 1000)
	createUser(t, repo, "b@example.com", 2000)
	may := core.Period{Year: 2025, Month: 5}

	svc := newObjectiveService(t, repo)
	n, err := svc.GenerateAll(ctx, may)
	if err != nil || n != 2 {
		t.Fatalf("GenerateAll() = %d, %v; want 2", n, err)
	}

	addEntry(t, repo, a.ID, core.KindExpense, 5000, core.NewDate(2025, 5, 10), nil)
	report, err := svc.EvaluateAll(ctx, may, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if report.Evaluated != 2 || report.Failed != 1 || report.Achieved != 1 {
		t.Errorf("EvaluateAll() = %+v", report)
	}
}
