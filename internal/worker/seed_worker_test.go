package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"salestats/internal/amqp"
	"salestats/internal/services"
)

type fakeLoader struct {
	calls int
	err   error
}

func (f *fakeLoader) Load(context.Context) (services.LoadResult, error) {
	f.calls++
	if f.err != nil {
		return services.LoadResult{}, f.err
	}
	return services.LoadResult{RecordsLoaded: 60}, nil
}

func TestHandleSeedRequest(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	loader := &fakeLoader{}
	w := NewSeedWorker(loader)
	w.now = func() time.Time { return base }
	ctx := context.Background()

	if err := w.HandleSeedRequest(ctx, &amqp.SeedRequestMessage{RequestID: "a", RequestedAt: base.Add(-time.Minute)}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("loads = %d, want 1", loader.calls)
	}

	// Queued before the load above started: nothing new to load
	if err := w.HandleSeedRequest(ctx, &amqp.SeedRequestMessage{RequestID: "b", RequestedAt: base.Add(-time.Second)}); err != nil {
		t.Fatalf("stale request: %v", err)
	}
	if loader.calls != 1 {
		t.Errorf("stale request triggered a load")
	}

	if err := w.HandleSeedRequest(ctx, &amqp.SeedRequestMessage{RequestID: "c", RequestedAt: base.Add(time.Second)}); err != nil {
		t.Fatalf("new request: %v", err)
	}
	if loader.calls != 2 {
		t.Errorf("loads = %d, want 2", loader.calls)
	}
}

func TestHandleSeedRequestFailure(t *testing.T) {
	loadErr := errors.New("source down")
	loader := &fakeLoader{err: loadErr}
	w := NewSeedWorker(loader)

	err := w.HandleSeedRequest(context.Background(), amqp.NewSeedRequestMessage("req_1"))
	if !errors.Is(err, loadErr) {
		t.Fatalf("err = %v, want %v", err, loadErr)
	}

	// A failed load does not mark later requests as satisfied
	loader.err = nil
	if err := w.HandleSeedRequest(context.Background(), &amqp.SeedRequestMessage{RequestID: "old", RequestedAt: time.Unix(0, 0)}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if loader.calls != 2 {
		t.Errorf("loads = %d, want 2", loader.calls)
	}
}

type countingLoader struct {
	calls atomic.Int32
}

func (c *countingLoader) Load(context.Context) (services.LoadResult, error) {
	c.calls.Add(1)
	return services.LoadResult{RecordsLoaded: 1}, nil
}

func TestRunPeriodic(t *testing.T) {
	loader := &countingLoader{}
	w := NewSeedWorker(loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.RunPeriodic(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for loader.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("loads = %d after 2s, want at least 2", loader.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop after cancel")
	}
}
