package core

import (
	"errors"
	"strings"
)

const (
	SortDate    = "date"
	SortAmount  = "amount"
	SortTitle   = "title"
	SortCreated = "created"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultLimit = 50
	MaxLimit     = 200
)

// TransactionFilter narrows the unified transaction view. Zero values mean
// "no constraint".
type TransactionFilter struct {
	UserID     int64
	Kind       TransactionKind
	CategoryID *int64
	From       Date
	To         Date
	MinAmount  Money
	MaxAmount  Money
	Query      string
	Sort       string
	Order      string
	Limit      int
	Offset     int
}

// Normalize fills defaults and clamps paging values in place.
func (f *TransactionFilter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	switch f.Sort {
	case SortDate, SortAmount, SortTitle, SortCreated:
	default:
		f.Sort = SortDate
	}
	f.Order = strings.ToLower(f.Order)
	if f.Order != OrderAsc {
		f.Order = OrderDesc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func (f TransactionFilter) Validate() error {
	if f.Kind != "" && !f.Kind.Valid() {
		return fieldErr("kind", ErrInvalidKind)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fieldErr("to", errors.New("to must not be before from"))
	}
	if f.MinAmount.Cents < 0 || f.MaxAmount.Cents < 0 {
		return fieldErr("amount", ErrInvalidAmount)
	}
	if !f.MaxAmount.IsZero() && f.MaxAmount.Cents < f.MinAmount.Cents {
		return fieldErr("max_amount", errors.New("max_amount must not be below min_amount"))
	}
	return nil
}

// TransactionPage is one page of filtered results plus the unpaged total.
type TransactionPage struct {
	Items  []Transaction
	Total  int
	Limit  int
	Offset int
}
