package cli

import (
	"testing"
	"time"

	"salestats/internal/config"
	"salestats/internal/seed"
)

func TestSeedConfig(t *testing.T) {
	cfg := &config.Config{
		SeedSource:               "sheets",
		SeedURL:                  "https://example.com/data.json",
		SeedTimeout:              5 * time.Second,
		SeedFile:                 "seed.json",
		GoogleSpreadsheetID:      "sheet-id",
		GoogleSheetRange:         "Data!A:G",
		GoogleServiceAccountFile: "sa.json",
		GoogleOAuthClientFile:    "client.json",
		GoogleOAuthTokenFile:     "token.json",
	}

	got := SeedConfig(cfg)
	if got.Kind != seed.SheetsKind || !got.Kind.IsValid() {
		t.Errorf("Kind = %q", got.Kind)
	}
	if got.URL != cfg.SeedURL || got.Timeout != cfg.SeedTimeout || got.FilePath != cfg.SeedFile {
		t.Errorf("unexpected seed config %+v", got)
	}
	if got.Sheets.SpreadsheetID != "sheet-id" || got.Sheets.Range != "Data!A:G" || got.Sheets.CredentialsFile != "sa.json" {
		t.Errorf("unexpected sheets config %+v", got.Sheets)
	}
	if !got.Sheets.OAuth.Enabled() || got.Sheets.OAuth.ClientFile != "client.json" {
		t.Errorf("unexpected oauth config %+v", got.Sheets.OAuth)
	}
}
