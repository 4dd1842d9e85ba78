// Package backend builds the ledger exporter selected by configuration.
package backend

import (
	"context"
	"fmt"

	"finanzas/internal/config"
	applog "finanzas/internal/log"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
	"finanzas/internal/sheets/memory"
)

// NewExporter returns the exporter for cfg.ExportBackend. The "none"
// backend yields a nil exporter, which disables export in the worker.
func NewExporter(ctx context.Context, cfg *config.Config) (sheets.LedgerExporter, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentSheets)

	switch cfg.ExportBackend {
	case config.ExportNone, "":
		logger.InfoContext(ctx, "Ledger export disabled")
		return nil, nil

	case config.ExportMemory:
		logger.InfoContext(ctx, "Using in-memory ledger export")
		return memory.New(), nil

	case config.ExportSheets:
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("create sheets exporter: %w", err)
		}
		logger.InfoContext(ctx, "Using Google Sheets ledger export",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported export backend: %s", cfg.ExportBackend)
	}
}
