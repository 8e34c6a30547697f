// Package backend builds the record store selected by configuration.
package backend

import (
	"context"

	"salestats/internal/catalog"
)

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// BackendResult contains the store and its optional cleanup function.
type BackendResult struct {
	Store   catalog.Store
	Pinger  catalog.Pinger
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty means start with an empty catalog
	MemoryDataFile string
}

// BackendType represents the type of store.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
