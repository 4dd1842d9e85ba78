package backend

import (
	"context"
	"testing"

	"finanzas/internal/config"
	"finanzas/internal/sheets/memory"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantNil  bool
		wantMem  bool
		wantFail bool
	}{
		{name: "none", cfg: config.Config{ExportBackend: config.ExportNone}, wantNil: true},
		{name: "empty", cfg: config.Config{}, wantNil: true},
		{name: "memory", cfg: config.Config{ExportBackend: config.ExportMemory}, wantMem: true},
		{name: "sheets without spreadsheet", cfg: config.Config{ExportBackend: config.ExportSheets, GoogleCredentialsJSON: "{}"}, wantFail: true},
		{name: "sheets without credentials", cfg: config.Config{ExportBackend: config.ExportSheets, GoogleSpreadsheetID: "s"}, wantFail: true},
		{name: "unknown", cfg: config.Config{ExportBackend: "ftp"}, wantFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewExporter(context.Background(), &tt.cfg)
			if tt.wantFail {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExporter() error = %v", err)
			}
			if tt.wantNil && exp != nil {
				t.Errorf("exporter = %T, want nil", exp)
			}
			if tt.wantMem {
				if _, ok := exp.(*memory.Store); !ok {
					t.Errorf("exporter = %T, want *memory.Store", exp)
				}
			}
		})
	}
}
