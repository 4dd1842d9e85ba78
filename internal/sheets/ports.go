// Package sheets defines the ledger export port and its adapters.
package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter appends one transaction to an external ledger and
	// returns a reference to the written row.
	LedgerExporter interface {
		Export(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)

// Row renders t as the spreadsheet columns Date, Kind, Title, Amount,
// Category, Note, Entry ID and User ID.
func Row(t core.Transaction) []any {
	return []any{
		t.Date.String(),
		string(t.Kind),
		t.Title,
		core.FormatCents(t.Amount.Cents),
		t.CategoryName,
		t.Note,
		t.ID,
		t.UserID,
	}
}
