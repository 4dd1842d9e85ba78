package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateAndSeed(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, "--db", db, "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.HasPrefix(out, "schema version ") || strings.Contains(out, "version 0") {
		t.Errorf("migrate output = %q", out)
	}

	out, err = run(t, "--db", db, "seed")
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if out == "seeded 0 categories\n" {
		t.Errorf("first seed inserted nothing")
	}

	out, err = run(t, "--db", db, "seed")
	if err != nil {
		t.Fatalf("second seed error = %v", err)
	}
	if out != "seeded 0 categories\n" {
		t.Errorf("second seed output = %q", out)
	}
}

func TestProcessRecurringAndRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ctl.db")
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, core.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRecurringPayment(ctx, core.RecurringPayment{
		UserID: u.ID, Title: "Rent", Amount: core.Money{Cents: 80000}, Kind: core.KindExpense,
		Every: core.Monthly, StartDate: core.NewDate(2025, 1, 31), Active: true,
	}); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	out, err := run(t, "--db", db, "process-recurring", "--date", "2025-02-28")
	if err != nil {
		t.Fatalf("process-recurring error = %v", err)
	}
	if !strings.Contains(out, "created 1") {
		t.Errorf("first run output = %q", out)
	}

	out, err = run(t, "--db", db, "process-recurring", "--date", "2025-02-28")
	if err != nil {
		t.Fatalf("second process-recurring error = %v", err)
	}
	if !strings.Contains(out, "created 0") {
		t.Errorf("second run output = %q", out)
	}

	out, err = run(t, "--db", db, "runs")
	if err != nil {
		t.Fatalf("runs error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 {
		t.Errorf("runs output = %q", out)
	}

	if _, err := run(t, "--db", db, "process-recurring", "--date", "28/02/2025"); err == nil {
		t.Error("expected error for malformed --date")
	}
}

func TestObjectivesCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ctl.db")
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	u, err := repo.CreateUser(context.Background(), core.User{
		Name: "Ana", Email: "ana@example.com", PasswordHash: "x", MonthlyBudget: core.Money{Cents: 50000},
	})
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()

	out, err := run(t, "--db", db, "objectives", "generate", "--period", "2024-05")
	if err != nil {
		t.Fatalf("generate error = %v", err)
	}
	if !strings.Contains(out, "generated 1 objectives for 2024-05") {
		t.Errorf("generate output = %q", out)
	}

	// Mid-month the budget is not yet decided.
	out, err = run(t, "--db", db, "objectives", "evaluate", "--period", "2024-05", "--as-of", "2024-05-20")
	if err != nil {
		t.Fatalf("evaluate --as-of error = %v", err)
	}
	if !strings.Contains(out, "evaluated 1, achieved 0, failed 0") {
		t.Errorf("evaluate --as-of output = %q", out)
	}
	if _, err := run(t, "--db", db, "objectives", "evaluate", "--as-of", "20/05/2024"); err == nil {
		t.Error("expected error for malformed --as-of")
	}

	out, err = run(t, "--db", db, "objectives", "evaluate", "--period", "2024-05", "--user", strconv.FormatInt(u.ID, 10))
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	if !strings.Contains(out, "evaluated 1, achieved 1") {
		t.Errorf("evaluate output = %q", out)
	}

	if _, err := run(t, "--db", db, "objectives", "evaluate", "--period", "2024-13"); err == nil {
		t.Error("expected error for invalid period")
	}
}
