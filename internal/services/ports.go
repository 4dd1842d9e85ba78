package services

import (
	"context"
	"time"

	"finanzas/internal/core"
)

// EventPublisher announces ledger changes. The AMQP client implements it.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, eventType core.EntryEvent, e core.Entry) error
}

// SummaryInvalidator drops cached month summaries after a write.
type SummaryInvalidator interface {
	Invalidate(userID int64, periods ...core.Period)
	InvalidateUser(userID int64)
}

type CategoryStore interface {
	ListCategories(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, userID, id int64) error
	SeedSystemCategories(ctx context.Context, cats []core.Category) (int, error)
}

type EntryStore interface {
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error)
	GetEntry(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Entry, error)
	UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error)
	DeleteEntry(ctx context.Context, kind core.TransactionKind, userID, id int64) error
}

type RecurringStore interface {
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateRecurringPayment(ctx context.Context, rp core.RecurringPayment) (core.RecurringPayment, error)
	GetRecurringPayment(ctx context.Context, userID, id int64) (core.RecurringPayment, error)
	ListRecurringPayments(ctx context.Context, userID int64) ([]core.RecurringPayment, error)
	UpdateRecurringPayment(ctx context.Context, rp core.RecurringPayment) error
	DeleteRecurringPayment(ctx context.Context, userID, id int64) error
	ListRuns(ctx context.Context, limit int) ([]core.RecurringRun, error)
}

// RunStore is what the recurring batch needs.
type RunStore interface {
	ListActiveRecurringPayments(ctx context.Context, asOf core.Date) ([]core.RecurringPayment, error)
	MaterializeOccurrence(ctx context.Context, rp core.RecurringPayment, on core.Date) (core.Entry, bool, error)
	StartRun(ctx context.Context, run core.RecurringRun) (core.RecurringRun, error)
	FinishRun(ctx context.Context, run core.RecurringRun) error
}

type TransactionStore interface {
	ListTransactions(ctx context.Context, f core.TransactionFilter) (core.TransactionPage, error)
	GetTransaction(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Transaction, error)
}

type SummaryStore interface {
	GetUser(ctx context.Context, id int64) (core.User, error)
	SumByKind(ctx context.Context, userID int64, from, to core.Date) (income, expense core.Money, err error)
	CategorySpend(ctx context.Context, userID int64, from, to core.Date) ([]core.CategorySpend, error)
}

type ObjectiveStore interface {
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListCategories(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	SumByKind(ctx context.Context, userID int64, from, to core.Date) (income, expense core.Money, err error)
	SumExpenses(ctx context.Context, userID int64, categoryID *int64, from, to core.Date) (core.Money, error)

	CreateObjective(ctx context.Context, o core.Objective) (core.Objective, error)
	CreateObjectiveIfAbsent(ctx context.Context, o core.Objective) (core.Objective, bool, error)
	GetObjective(ctx context.Context, userID, id int64) (core.Objective, error)
	ListObjectives(ctx context.Context, userID int64, period core.Period) ([]core.Objective, error)
	DeleteObjective(ctx context.Context, userID, id int64) error
	UpdateObjectiveProgress(ctx context.Context, id int64, progress core.Money, at time.Time) error
	SettleObjective(ctx context.Context, o core.Objective, status core.ObjectiveStatus, progress core.Money, entry core.AchievementLog) (bool, error)
	ListAchievements(ctx context.Context, userID int64, limit int) ([]core.AchievementLog, error)
	TotalPoints(ctx context.Context, userID int64) (int, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateUserProfile(ctx context.Context, u core.User) error
}
