package services

import (
	"context"

	"finanzas/internal/core"
)

// TransactionService serves the unified expense+income view.
type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

// List normalizes and validates f before querying. The returned page
// carries the effective limit and offset.
func (s *TransactionService) List(ctx context.Context, f core.TransactionFilter) (core.TransactionPage, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return core.TransactionPage{}, err
	}
	return s.store.ListTransactions(ctx, f)
}

func (s *TransactionService) Get(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Transaction, error) {
	if !kind.Valid() {
		return core.Transaction{}, &core.ValidationError{Field: "kind", Err: core.ErrInvalidKind}
	}
	return s.store.GetTransaction(ctx, kind, userID, id)
}
