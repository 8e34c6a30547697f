package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"salestats/internal/catalog"
	"salestats/internal/core"
	"salestats/internal/log"
	"salestats/internal/metrics"
	"salestats/internal/seed"
)

// LoadResult describes a completed bulk load.
type LoadResult struct {
	RecordsLoaded int `json:"recordsLoaded"`
}

// Invalidator is notified after the catalog content changes.
type Invalidator interface {
	Invalidate()
}

// SeedService replaces the catalog with the content of a seed source.
type SeedService struct {
	source   seed.Source
	store    catalog.Replacer
	logger   *log.Logger
	metrics  *metrics.Collector
	notify   []Invalidator
	inFlight atomic.Bool
}

// SeedOption customizes a SeedService.
type SeedOption func(*SeedService)

func WithSeedMetrics(m *metrics.Collector) SeedOption {
	return func(s *SeedService) { s.metrics = m }
}

func WithSeedLogger(l *log.Logger) SeedOption {
	return func(s *SeedService) { s.logger = l }
}

// WithInvalidation registers caches to purge after each successful load.
func WithInvalidation(inv ...Invalidator) SeedOption {
	return func(s *SeedService) { s.notify = append(s.notify, inv...) }
}

func NewSeedService(source seed.Source, store catalog.Replacer, opts ...SeedOption) *SeedService {
	s := &SeedService{
		source: source,
		store:  store,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentSeed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches, validates and stores the whole record set. The store is left
// untouched if fetching or validation fails. Only one load runs at a time per
// service; overlapping calls fail with core.ErrLoadInProgress.
func (s *SeedService) Load(ctx context.Context) (LoadResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return LoadResult{}, core.ErrLoadInProgress
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	res, err := s.load(ctx)
	s.metrics.SeedLoaded(res.RecordsLoaded, err)

	fields := log.NewFields().
		WithOperation(log.OpLoad).
		WithRecords(res.RecordsLoaded).
		WithError(err)
	fields[log.FieldSource] = s.source.Name()
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	if err != nil {
		s.logger.ErrorContext(ctx, "Bulk load failed", fields.ToSlice()...)
		return LoadResult{}, err
	}
	s.logger.InfoContext(ctx, "Bulk load completed", fields.ToSlice()...)
	return res, nil
}

func (s *SeedService) load(ctx context.Context) (LoadResult, error) {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("fetch seed data: %w", err)
	}

	txs, err := seed.ToTransactions(records)
	if err != nil {
		return LoadResult{}, fmt.Errorf("validate seed data: %w", err)
	}

	n, err := s.store.ReplaceAll(ctx, txs)
	if err != nil {
		if !errors.Is(err, core.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		return LoadResult{}, fmt.Errorf("replace catalog: %w", err)
	}

	for _, inv := range s.notify {
		inv.Invalidate()
	}
	return LoadResult{RecordsLoaded: n}, nil
}
