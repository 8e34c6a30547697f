// Package worker runs queued bulk loads.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salestats/internal/amqp"
	"salestats/internal/services"
)

// Loader performs one bulk load.
type Loader interface {
	Load(ctx context.Context) (services.LoadResult, error)
}

// SeedWorker handles seed request messages. A request issued before the start
// of the last successful load is already satisfied and is skipped.
type SeedWorker struct {
	loader Loader
	now    func() time.Time

	mu         sync.Mutex
	lastLoaded time.Time
}

func NewSeedWorker(loader Loader) *SeedWorker {
	return &SeedWorker{loader: loader, now: time.Now}
}

// HandleSeedRequest processes a single seed request message from AMQP.
func (w *SeedWorker) HandleSeedRequest(ctx context.Context, msg *amqp.SeedRequestMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastLoaded.IsZero() && msg.RequestedAt.Before(w.lastLoaded) {
		slog.InfoContext(ctx, "Seed request already satisfied by a later load",
			"request_id", msg.RequestID,
			"requested_at", msg.RequestedAt,
			"last_loaded", w.lastLoaded)
		return nil
	}

	started := w.now()
	res, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("seed request %s: %w", msg.RequestID, err)
	}
	w.lastLoaded = started

	slog.InfoContext(ctx, "Seed request completed",
		"request_id", msg.RequestID,
		"records", res.RecordsLoaded,
		"duration_ms", w.now().Sub(started).Milliseconds())
	return nil
}

// RunPeriodic reloads the catalog every interval until ctx ends. Failed loads
// are logged and retried on the next tick.
func (w *SeedWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := &amqp.SeedRequestMessage{
				RequestID:   fmt.Sprintf("scheduled-%d", w.now().Unix()),
				RequestedAt: w.now().UTC(),
			}
			if err := w.HandleSeedRequest(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Periodic seed load failed",
					"error", err,
					"next_check", w.now().Add(interval).Format(time.TimeOnly))
			}
		}
	}
}
