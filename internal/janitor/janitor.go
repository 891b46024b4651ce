// Package janitor closes debates that were started but never finished.
package janitor

import (
	"context"
	"log/slog"
	"time"
)

// Sealer grades and seals unfinished debates idle for longer than ttl.
type Sealer interface {
	SealStale(ctx context.Context, ttl time.Duration) (int, error)
}

// Start runs a background goroutine that sweeps every interval until ctx is
// canceled. The returned channel is closed once the goroutine has exited.
func Start(ctx context.Context, svc Sealer, ttl, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		slog.Info("Janitor started", "interval", interval, "debate_ttl", ttl)

		for {
			select {
			case <-ticker.C:
				Sweep(ctx, svc, ttl)
			case <-ctx.Done():
				slog.Info("Janitor shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}

// Sweep performs a single pass and returns the number of debates sealed.
func Sweep(ctx context.Context, svc Sealer, ttl time.Duration) int {
	sealed, err := svc.SealStale(ctx, ttl)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Janitor sweep canceled", "error", err)
			return sealed
		}
		slog.Error("Janitor failed to seal stale debates", "error", err, "sealed", sealed)
		return sealed
	}
	if sealed > 0 {
		slog.Info("Janitor sealed stale debates", "count", sealed)
	}
	return sealed
}
