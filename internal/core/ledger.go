package core

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

const (
	MaxTitleLength = 120
	MaxNoteLength  = 500
)

type (
	// TransactionKind separates money going out from money coming in.
	TransactionKind string

	User struct {
		ID            int64
		Name          string
		Email         string
		PasswordHash  string
		MonthlyBudget Money // zero means no budget
		CreatedAt     time.Time
	}

	// Category groups entries of one kind. A nil UserID marks a system
	// category visible to everyone and editable by nobody.
	Category struct {
		ID           int64
		UserID       *int64
		Name         string
		Kind         TransactionKind
		Icon         string
		MonthlyLimit Money // zero means unlimited
	}

	// Entry is one expense or income row.
	Entry struct {
		ID                 int64
		Kind               TransactionKind
		UserID             int64
		CategoryID         *int64
		Title              string
		Amount             Money
		Date               Date
		Note               string
		RecurringPaymentID *int64
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}
)

func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// ParseKind accepts "expense", "income" and their plurals.
func ParseKind(s string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return KindExpense, nil
	case "income", "incomes":
		return KindIncome, nil
	}
	return "", ErrInvalidKind
}

func (c Category) IsSystem() bool { return c.UserID == nil }

// VisibleTo reports whether userID may attach entries to the category.
func (c Category) VisibleTo(userID int64) bool {
	return c.UserID == nil || *c.UserID == userID
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fieldErr("name", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(name) > 60 {
		return fieldErr("name", ErrTitleTooLong)
	}
	if !c.Kind.Valid() {
		return fieldErr("kind", ErrInvalidKind)
	}
	if c.MonthlyLimit.Cents < 0 {
		return fieldErr("monthly_limit", ErrInvalidAmount)
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fieldErr("name", ErrEmptyTitle)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fieldErr("email", err)
	}
	if u.MonthlyBudget.Cents < 0 {
		return fieldErr("monthly_budget", ErrInvalidAmount)
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fieldErr("title", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fieldErr("title", ErrTitleTooLong)
	}
	return nil
}

func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return fieldErr("kind", ErrInvalidKind)
	}
	if err := e.Date.Validate(); err != nil {
		return fieldErr("date", err)
	}
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return fieldErr("note", ErrNoteTooLong)
	}
	if err := e.Amount.Validate(); err != nil {
		return fieldErr("amount", err)
	}
	return nil
}

// Transaction is an entry joined with its category name.
type Transaction struct {
	Entry
	CategoryName string
}

// EntryEvent names a change to an expense or income.
type EntryEvent string

const (
	EventCreated EntryEvent = "transaction.created"
	EventUpdated EntryEvent = "transaction.updated"
	EventDeleted EntryEvent = "transaction.deleted"
)

func (e EntryEvent) Valid() bool {
	switch e {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}
