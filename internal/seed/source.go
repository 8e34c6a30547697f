package seed

import (
	"context"
	"fmt"
	"time"
)

// Source yields the full set of records for a bulk load.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
	Name() string
}

// Kind names a source implementation.
type Kind string

const (
	HTTPKind   Kind = "http"
	FileKind   Kind = "file"
	SheetsKind Kind = "sheets"
)

// IsValid returns true if the source kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case HTTPKind, FileKind, SheetsKind:
		return true
	default:
		return false
	}
}

// Config selects and configures a source.
type Config struct {
	Kind Kind

	URL     string
	Timeout time.Duration

	FilePath string

	Sheets SheetsConfig
}

// New builds the source described by cfg.
func New(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Kind {
	case HTTPKind:
		return NewHTTPSource(cfg.URL, cfg.Timeout), nil
	case FileKind:
		return NewFileSource(cfg.FilePath), nil
	case SheetsKind:
		return NewSheetsSource(ctx, cfg.Sheets)
	default:
		return nil, fmt.Errorf("unsupported seed source: %q", cfg.Kind)
	}
}
