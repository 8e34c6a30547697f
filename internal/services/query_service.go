// Package services holds the catalog's query and bulk-load use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"salestats/internal/cache"
	"salestats/internal/catalog"
	"salestats/internal/core"
	"salestats/internal/log"
	"salestats/internal/metrics"
)

// QueryService answers listing and aggregate queries for a calendar month.
// The month is always resolved before the store is touched.
type QueryService struct {
	store    catalog.Finder
	resolver core.MonthResolver
	logger   *log.Logger
	metrics  *metrics.Collector

	stats      cache.Cache[any]
	group      singleflight.Group
	generation atomic.Uint64
}

// QueryOption customizes a QueryService.
type QueryOption func(*QueryService)

// WithStatsCache memoises aggregate results. A nil cache disables memoisation.
func WithStatsCache(c cache.Cache[any]) QueryOption {
	return func(s *QueryService) { s.stats = c }
}

func WithQueryMetrics(m *metrics.Collector) QueryOption {
	return func(s *QueryService) { s.metrics = m }
}

func WithQueryLogger(l *log.Logger) QueryOption {
	return func(s *QueryService) { s.logger = l }
}

func NewQueryService(store catalog.Finder, resolver core.MonthResolver, opts ...QueryOption) *QueryService {
	s := &QueryService{
		store:    store,
		resolver: resolver,
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentQuery),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTransactions returns one page of the month's records matching search.
func (s *QueryService) ListTransactions(ctx context.Context, month, search string, page core.Page) (core.TransactionPage, error) {
	defer s.observe(log.OpListTransactions, time.Now())

	window, err := s.resolver.Resolve(month)
	if err != nil {
		return core.TransactionPage{}, err
	}
	f := core.SearchFilter(window, search)

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return core.TransactionPage{}, s.storeError(ctx, log.OpListTransactions, month, err)
	}
	records, err := s.store.Find(ctx, f, page.Offset(), page.Limit())
	if err != nil {
		return core.TransactionPage{}, s.storeError(ctx, log.OpListTransactions, month, err)
	}
	if records == nil {
		records = []core.Transaction{}
	}

	return core.TransactionPage{
		Transactions: records,
		TotalPages:   page.TotalPages(total),
		Page:         page.Number,
		PerPage:      page.Limit(),
		Total:        total,
	}, nil
}

// Summary reports turnover, sold count and unsold count for the month.
func (s *QueryService) Summary(ctx context.Context, month string) (core.Summary, error) {
	v, err := s.aggregate(ctx, log.OpSummary, month, func(records []core.Transaction) any {
		return core.Summarize(records)
	})
	if err != nil {
		return core.Summary{}, err
	}
	return v.(core.Summary), nil
}

// Histogram counts the month's records per price bucket.
func (s *QueryService) Histogram(ctx context.Context, month string) ([]core.BucketCount, error) {
	v, err := s.aggregate(ctx, log.OpHistogram, month, func(records []core.Transaction) any {
		return core.BuildHistogram(records)
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.BucketCount), nil
}

// CategoryCounts counts the month's records per category.
func (s *QueryService) CategoryCounts(ctx context.Context, month string) ([]core.CategoryCount, error) {
	v, err := s.aggregate(ctx, log.OpCategoryCounts, month, func(records []core.Transaction) any {
		return core.CountCategories(records)
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.CategoryCount), nil
}

// Invalidate drops memoised aggregates. Computations already running when
// Invalidate is called will not populate the cache.
func (s *QueryService) Invalidate() {
	s.generation.Add(1)
	if s.stats != nil {
		s.stats.Purge()
	}
}

// aggregate scans the exact month window and reduces it. Results are cached
// per operation and month name; concurrent identical calls share one scan.
func (s *QueryService) aggregate(ctx context.Context, op, month string, reduce func([]core.Transaction) any) (any, error) {
	defer s.observe(op, time.Now())

	window, err := s.resolver.Resolve(month)
	if err != nil {
		return nil, err
	}

	key := op + ":" + window.Name
	if s.stats != nil {
		if v, ok := s.stats.Get(key); ok {
			s.metrics.CacheHit(op)
			return v, nil
		}
		s.metrics.CacheMiss(op)
	}

	// The scan is shared, so it must outlive any single caller's cancellation
	scanCtx := context.WithoutCancel(ctx)
	gen := s.generation.Load()
	ch := s.group.DoChan(key, func() (any, error) {
		records, err := s.store.Find(scanCtx, core.WindowFilter(window), 0, 0)
		if err != nil {
			return nil, err
		}
		result := reduce(records)
		if s.stats != nil && s.generation.Load() == gen {
			s.stats.Set(key, result)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, s.storeError(ctx, op, month, res.Err)
		}
		return res.Val, nil
	}
}

func (s *QueryService) storeError(ctx context.Context, op, month string, err error) error {
	s.logger.ErrorContext(ctx, "Catalog query failed",
		log.NewFields().WithOperation(op).WithQuery(month, "").WithError(err).ToSlice()...)
	if errors.Is(err, core.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

func (s *QueryService) observe(op string, start time.Time) {
	s.metrics.ObserveQuery(op, time.Since(start))
}
