package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *storage.SQLiteRepository, email string, budgetCents int64) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name: "Test", Email: email, PasswordHash: "hash", MonthlyBudget: core.Money{Cents: budgetCents},
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func createCategory(t *testing.T, repo *storage.SQLiteRepository, userID int64, name string, kind core.TransactionKind, limitCents int64) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		UserID: &userID, Name: name, Kind: kind, MonthlyLimit: core.Money{Cents: limitCents},
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	return c
}

func addEntry(t *testing.T, repo *storage.SQLiteRepository, userID int64, kind core.TransactionKind, cents int64, date core.Date, categoryID *int64) core.Entry {
	t.Helper()
	e, err := repo.CreateEntry(context.Background(), core.Entry{
		Kind: kind, UserID: userID, Title: "entry", Amount: core.Money{Cents: cents}, Date: date, CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	return e
}

type publishedEvent struct {
	Type  core.EntryEvent
	Entry core.Entry
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEntryEvent(_ context.Context, eventType core.EntryEvent, e core.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Entry: e})
	return p.err
}

func (p *fakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type invalidation struct {
	userID  int64
	periods []core.Period
	all     bool
}

type fakeInvalidator struct {
	calls []invalidation
}

func (f *fakeInvalidator) Invalidate(userID int64, periods ...core.Period) {
	f.calls = append(f.calls, invalidation{userID: userID, periods: periods})
}

func (f *fakeInvalidator) InvalidateUser(userID int64) {
	f.calls = append(f.calls, invalidation{userID: userID, all: true})
}
