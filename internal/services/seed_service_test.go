package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"salestats/internal/catalog/memory"
	"salestats/internal/core"
	"salestats/internal/seed"
)

type fakeSource struct {
	records []seed.Record
	err     error
	block   chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]seed.Record, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.records, f.err
}

func record(title string, price float64, date time.Time, sold bool) seed.Record {
	desc, cat := "desc", "misc"
	return seed.Record{Title: &title, Description: &desc, Price: &price, DateOfSale: &date, Category: &cat, Sold: &sold}
}

type invalidationCounter struct{ n int }

func (c *invalidationCounter) Invalidate() { c.n++ }

func TestSeedLoad(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	src := &fakeSource{records: []seed.Record{
		record("a", 10, time.Date(2024, 3, 1, 2, 0, 0, 0, ist), true),
		record("b", 20, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), false),
	}}
	store := memory.New(fixtures()...)
	inv := &invalidationCounter{}
	svc := NewSeedService(src, store, WithInvalidation(inv))

	res, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RecordsLoaded != 2 || store.Len() != 2 {
		t.Errorf("loaded %d, store holds %d; want 2", res.RecordsLoaded, store.Len())
	}
	if inv.n != 1 {
		t.Errorf("invalidated %d times, want 1", inv.n)
	}

	all, _ := store.Find(context.Background(), core.Filter{}, 0, 0)
	if all[0].DateOfSale.Location() != time.UTC || all[0].DateOfSale.Month() != time.February {
		t.Errorf("date not normalized to UTC: %v", all[0].DateOfSale)
	}

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("reload should replace, store holds %d", store.Len())
	}
}

func TestSeedLoadInvalidRecordLeavesStore(t *testing.T) {
	bad := record("x", 1, time.Now(), true)
	bad.Category = nil
	src := &fakeSource{records: []seed.Record{record("ok", 1, time.Now(), true), bad}}
	store := memory.New(fixtures()...)
	inv := &invalidationCounter{}

	_, err := NewSeedService(src, store, WithInvalidation(inv)).Load(context.Background())
	if !errors.Is(err, core.ErrInvalidRecord) {
		t.Fatalf("Load err = %v, want ErrInvalidRecord", err)
	}
	if store.Len() != len(fixtures()) {
		t.Errorf("store modified: %d records", store.Len())
	}
	if inv.n != 0 {
		t.Error("cache invalidated on failed load")
	}
}

func TestSeedLoadSourceFailure(t *testing.T) {
	src := &fakeSource{err: core.ErrStoreUnavailable}
	store := memory.New(fixtures()...)

	_, err := NewSeedService(src, store).Load(context.Background())
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("Load err = %v", err)
	}
	if store.Len() != len(fixtures()) {
		t.Errorf("store modified: %d records", store.Len())
	}
}

func TestSeedLoadRejectsConcurrentLoad(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	svc := NewSeedService(src, memory.New())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Load(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for !svc.inFlight.Load() {
		if time.Now().After(deadline) {
			t.Fatal("first load never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := svc.Load(context.Background()); !errors.Is(err, core.ErrLoadInProgress) {
		t.Errorf("overlapping Load err = %v, want ErrLoadInProgress", err)
	}

	close(src.block)
	if err := <-done; err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := svc.Load(context.Background()); err != nil {
		t.Errorf("Load after completion: %v", err)
	}
}
