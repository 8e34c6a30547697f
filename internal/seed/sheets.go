package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salestats/internal/core"
)

// DefaultSheetRange is read when no range is configured. The first row
// holds the column names.
const DefaultSheetRange = "Transactions!A:G"

// SheetsConfig configures the Google Sheets source.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string

	// OAuth is used when no service account is configured.
	OAuth OAuthConfig
}

// SheetsSource reads records from a spreadsheet range.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

// NewSheetsSource creates a Sheets client authenticated with a service account,
// or with a saved OAuth token when no service account is configured.
func NewSheetsSource(ctx context.Context, cfg SheetsConfig) (*SheetsSource, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	rng := strings.TrimSpace(cfg.Range)
	if rng == "" {
		rng = DefaultSheetRange
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsSource{svc: svc, spreadsheetID: cfg.SpreadsheetID, rng: rng}, nil
}

func newSheetsService(ctx context.Context, cfg SheetsConfig) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if strings.TrimSpace(cfg.CredentialsJSON) == "" && credentialsFile == "" {
		if cfg.OAuth.Enabled() {
			ts, err := cfg.OAuth.TokenSource(ctx)
			if err != nil {
				return nil, err
			}
			slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token",
				"scope", gsheet.SpreadsheetsReadonlyScope)
			return gsheet.NewService(ctx, goption.WithTokenSource(ts))
		}
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (s *SheetsSource) Name() string { return "sheets:" + s.spreadsheetID }

func (s *SheetsSource) Fetch(ctx context.Context) ([]Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read range %s: %w", core.ErrStoreUnavailable, s.rng, err)
	}
	return parseRows(resp.Values)
}

// parseRows maps a header row plus data rows onto records. Columns are
// matched by name, case-insensitively, so their order does not matter.
// Empty cells leave the field unset for validation to report.
func parseRows(values [][]interface{}) ([]Record, error) {
	if len(values) == 0 {
		return []Record{}, nil
	}

	header := toStrings(values[0])
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(h)] = i
	}
	cell := func(row []string, name string) (string, bool) {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(row) || row[i] == "" {
			return "", false
		}
		return row[i], true
	}

	records := make([]Record, 0, len(values)-1)
	for n, raw := range values[1:] {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		line := n + 2

		var r Record
		if v, ok := cell(row, "title"); ok {
			r.Title = &v
		}
		if v, ok := cell(row, "description"); ok {
			r.Description = &v
		}
		if v, ok := cell(row, "category"); ok {
			r.Category = &v
		}
		if v, ok := cell(row, "image"); ok {
			r.Image = v
		}
		if v, ok := cell(row, "price"); ok {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: price %q", core.ErrInvalidRecord, line, v)
			}
			r.Price = &p
		}
		if v, ok := cell(row, "dateOfSale"); ok {
			d, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: dateOfSale %q", core.ErrInvalidRecord, line, v)
			}
			r.DateOfSale = &d
		}
		if v, ok := cell(row, "sold"); ok {
			b, err := strconv.ParseBool(strings.ToLower(v))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: sold %q", core.ErrInvalidRecord, line, v)
			}
			r.Sold = &b
		}
		records = append(records, r)
	}
	return records, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
