package gameplay

import (
	"context"
	"log/slog"
	"time"
)

// EvictCallback is called for every session removed by the TTL worker.
type EvictCallback func(sessionID string)

// StartTTLWorker runs a background goroutine that periodically evicts
// sessions idle for longer than ttl. It stops when ctx is canceled.
func StartTTLWorker(ctx context.Context, mgr *Manager, ttl, interval time.Duration, onEvict EvictCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepExpiredSessions(ctx, mgr, ttl, onEvict)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpiredSessions(ctx context.Context, mgr *Manager, ttl time.Duration, onEvict EvictCallback) {
	ids, err := mgr.EvictExpired(ctx, ttl)
	if err != nil {
		slog.Error("TTL worker failed to evict expired sessions", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		slog.Debug("TTL worker evicted session", "session_id", id)
		if onEvict != nil {
			onEvict(id)
		}
	}
	slog.Info("TTL worker cleanup completed", "evicted", len(ids))
}
