package catalog

import (
	"context"
	"salestats/internal/core"
)

// Ports for record store adapters.
type (
	// Replacer swaps the whole record set: existing records are cleared and
	// the given ones inserted in order.
	Replacer interface {
		ReplaceAll(ctx context.Context, records []core.Transaction) (loaded int, err error)
	}

	// Finder runs filtered scans. Results keep insertion order.
	Finder interface {
		// Find returns up to limit matching records after skipping offset.
		// A limit of 0 returns every match.
		Find(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error)
		// Count returns the number of matching records.
		Count(ctx context.Context, f core.Filter) (int, error)
	}

	// Pinger reports whether the store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	Store interface {
		Replacer
		Finder
	}
)
