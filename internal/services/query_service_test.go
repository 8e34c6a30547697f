package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"salestats/internal/cache"
	"salestats/internal/catalog/memory"
	"salestats/internal/core"
)

func tx(title, desc string, price float64, date time.Time, category string, sold bool) core.Transaction {
	return core.Transaction{Title: title, Description: desc, Price: price, DateOfSale: date, Category: category, Sold: sold}
}

func fixtures() []core.Transaction {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 12, 0, 0, 0, time.UTC) }
	return []core.Transaction{
		tx("Backpack", "Fits a laptop bag", 329.85, d(2024, time.March, 5), "men's clothing", false),
		tx("T-Shirt", "Slim fit", 44.6, d(2024, time.March, 12), "men's clothing", true),
		tx("Gold Ring", "Classic", 100, d(2022, time.March, 10), "jewelery", true),
		tx("SSD", "Fast BAG of bits", 101, d(2024, time.March, 31), "electronics", true),
		tx("Monitor", "Wide", 999.99, d(2024, time.April, 1), "electronics", false),
	}
}

type countingStore struct {
	*memory.Store
	finds atomic.Int32
}

func (s *countingStore) Find(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	s.finds.Add(1)
	return s.Store.Find(ctx, f, offset, limit)
}

type failingStore struct{ err error }

func (s failingStore) Find(context.Context, core.Filter, int, int) ([]core.Transaction, error) {
	return nil, s.err
}

func (s failingStore) Count(context.Context, core.Filter) (int, error) { return 0, s.err }

func newQueryService(opts ...QueryOption) *QueryService {
	return NewQueryService(memory.New(fixtures()...), core.NewMonthResolver(2024), opts...)
}

func TestListTransactions(t *testing.T) {
	svc := newQueryService()
	ctx := context.Background()

	tests := []struct {
		name       string
		month      string
		search     string
		page       core.Page
		wantTitles []string
		wantTotal  int
		wantPages  int
	}{
		{"month of any year", "March", "", core.Page{Number: 1, PerPage: 10}, []string{"Backpack", "T-Shirt", "Gold Ring", "SSD"}, 4, 1},
		{"search is case-insensitive over both fields", "March", "bag", core.Page{Number: 1, PerPage: 10}, []string{"Backpack", "SSD"}, 2, 1},
		{"second page", "March", "", core.Page{Number: 2, PerPage: 3}, []string{"SSD"}, 4, 2},
		{"past the end", "March", "", core.Page{Number: 9, PerPage: 3}, []string{}, 4, 2},
		{"page number near MaxInt", "March", "", core.ParsePage("1000000000000000001", "10"), []string{}, 4, 1},
		{"page size of MaxInt", "March", "", core.ParsePage("1", "9223372036854775807"), []string{"Backpack", "T-Shirt", "Gold Ring", "SSD"}, 4, 1},
		{"no match", "June", "", core.Page{Number: 1, PerPage: 10}, []string{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListTransactions(ctx, tt.month, tt.search, tt.page)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if got.Transactions == nil {
				t.Fatal("transactions should never be nil")
			}
			if len(got.Transactions) != len(tt.wantTitles) {
				t.Fatalf("got %d transactions, want %d", len(got.Transactions), len(tt.wantTitles))
			}
			for i, title := range tt.wantTitles {
				if got.Transactions[i].Title != title {
					t.Errorf("transaction %d = %q, want %q", i, got.Transactions[i].Title, title)
				}
			}
			if got.Total != tt.wantTotal || got.TotalPages != tt.wantPages {
				t.Errorf("total=%d pages=%d, want %d/%d", got.Total, got.TotalPages, tt.wantTotal, tt.wantPages)
			}
		})
	}
}

func TestInvalidMonthNeverTouchesStore(t *testing.T) {
	store := &countingStore{Store: memory.New(fixtures()...)}
	svc := NewQueryService(store, core.NewMonthResolver(2024))
	ctx := context.Background()

	for _, month := range []string{"", "march", "Mar", "3", "Marchh"} {
		if _, err := svc.ListTransactions(ctx, month, "", core.Page{Number: 1, PerPage: 10}); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("ListTransactions(%q) err = %v", month, err)
		}
		if _, err := svc.Summary(ctx, month); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("Summary(%q) err = %v", month, err)
		}
		if _, err := svc.Histogram(ctx, month); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("Histogram(%q) err = %v", month, err)
		}
		if _, err := svc.CategoryCounts(ctx, month); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("CategoryCounts(%q) err = %v", month, err)
		}
	}
	if n := store.finds.Load(); n != 0 {
		t.Errorf("store scanned %d times", n)
	}
}

func TestAggregatesUseExactWindow(t *testing.T) {
	svc := newQueryService()
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "March")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := core.Summary{TotalAmount: 145.6, Count: 2, TotalNotSold: 1}
	if sum != want {
		t.Errorf("Summary = %+v, want %+v", sum, want)
	}

	hist, err := svc.Histogram(ctx, "March")
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(hist) != 10 {
		t.Fatalf("histogram has %d buckets", len(hist))
	}
	total := 0
	for _, b := range hist {
		total += b.Count
	}
	if total != 3 || hist[0].Count != 1 || hist[1].Count != 1 || hist[3].Count != 1 {
		t.Errorf("unexpected histogram %+v", hist)
	}

	cats, err := svc.CategoryCounts(ctx, "March")
	if err != nil {
		t.Fatalf("CategoryCounts: %v", err)
	}
	wantCats := []core.CategoryCount{{Category: "men's clothing", Count: 2}, {Category: "electronics", Count: 1}}
	if len(cats) != len(wantCats) {
		t.Fatalf("CategoryCounts = %+v", cats)
	}
	for i := range wantCats {
		if cats[i] != wantCats[i] {
			t.Errorf("category %d = %+v, want %+v", i, cats[i], wantCats[i])
		}
	}
}

func TestEmptyMonthAggregates(t *testing.T) {
	svc := newQueryService()
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "July")
	if err != nil || sum != (core.Summary{}) {
		t.Errorf("Summary(July) = %+v, %v", sum, err)
	}
	cats, err := svc.CategoryCounts(ctx, "July")
	if err != nil || cats == nil || len(cats) != 0 {
		t.Errorf("CategoryCounts(July) = %+v, %v", cats, err)
	}
	hist, _ := svc.Histogram(ctx, "July")
	for _, b := range hist {
		if b.Count != 0 {
			t.Errorf("bucket %s = %d, want 0", b.Label, b.Count)
		}
	}
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	svc := NewQueryService(failingStore{err: errors.New("disk gone")}, core.NewMonthResolver(2024))
	ctx := context.Background()

	if _, err := svc.ListTransactions(ctx, "March", "", core.Page{Number: 1, PerPage: 10}); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("ListTransactions err = %v", err)
	}
	if _, err := svc.Summary(ctx, "March"); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Summary err = %v", err)
	}
}

func TestStatsCache(t *testing.T) {
	store := &countingStore{Store: memory.New(fixtures()...)}
	svc := NewQueryService(store, core.NewMonthResolver(2024),
		WithStatsCache(cache.NewLRU[any](16, time.Minute)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Summary(ctx, "March"); err != nil {
			t.Fatalf("Summary: %v", err)
		}
	}
	if n := store.finds.Load(); n != 1 {
		t.Errorf("store scanned %d times, want 1", n)
	}

	if _, err := svc.Histogram(ctx, "March"); err != nil {
		t.Fatal(err)
	}
	if n := store.finds.Load(); n != 2 {
		t.Errorf("histogram should not share the summary entry; scans = %d", n)
	}

	store.ReplaceAll(ctx, fixtures()[:1])
	svc.Invalidate()

	sum, err := svc.Summary(ctx, "March")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 0 || sum.TotalNotSold != 1 {
		t.Errorf("stale summary after Invalidate: %+v", sum)
	}
}

type blockingStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
	finds   atomic.Int32
}

func (s *blockingStore) Find(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	if s.finds.Add(1) == 1 {
		close(s.entered)
	}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.Store.Find(ctx, f, offset, limit)
}

func TestSharedScanSurvivesCallerCancellation(t *testing.T) {
	store := &blockingStore{
		Store:   memory.New(fixtures()...),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewQueryService(store, core.NewMonthResolver(2024))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Summary(firstCtx, "March")
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		sum core.Summary
		err error
	}
	second := make(chan result, 1)
	go func() {
		sum, err := svc.Summary(context.Background(), "March")
		second <- result{sum, err}
	}()
	// Give the second caller time to join the in-flight scan
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
	}

	close(store.release)
	got := <-second
	if got.err != nil {
		t.Fatalf("joined caller err = %v, want success", got.err)
	}
	if got.sum.Count != 2 || got.sum.TotalNotSold != 1 {
		t.Errorf("summary = %+v", got.sum)
	}
	if n := store.finds.Load(); n != 1 {
		t.Errorf("store scanned %d times, want 1", n)
	}
}
