// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor purges expired sessions on a fixed interval.
type Janitor struct {
	purger   Purger
	interval time.Duration
}

func NewJanitor(purger Purger, interval time.Duration) *Janitor {
	return &Janitor{purger: purger, interval: interval}
}

// Start purges once immediately and then on every tick. It blocks until ctx
// is canceled and returns at once when the interval is not positive.
func (j *Janitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		slog.Info("session_janitor_disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("session_janitor_started", "interval", j.interval)

	j.run(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("session_janitor_stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *Janitor) run(ctx context.Context) {
	if _, err := j.purger.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
		slog.Error("session_purge_failed", "error", err)
	}
}
