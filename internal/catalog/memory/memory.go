package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"salestats/internal/catalog"
	"salestats/internal/core"
)

type Store struct {
	mu     sync.RWMutex
	items  []core.Transaction
	nextID int64
}

var _ catalog.Store = (*Store)(nil)

func New(records ...core.Transaction) *Store {
	s := &Store{}
	s.replace(records)
	return s
}

// NewFromFile seeds the store from a JSON array of transactions. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []core.Transaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(records...), nil
}

// ReplaceAll drops every stored record and inserts records with fresh IDs.
func (s *Store) ReplaceAll(_ context.Context, records []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.replace(records)
	return len(s.items), nil
}

func (s *Store) replace(records []core.Transaction) {
	items := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		s.nextID++
		r = r.Normalize()
		r.ID = s.nextID
		items = append(items, r)
	}
	s.items = items
}

// Find returns matching records in insertion order.
func (s *Store) Find(_ context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	skipped := 0
	for _, t := range s.items {
		if !f.Matches(t) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *Store) Count(_ context.Context, f core.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.items {
		if f.Matches(t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
