package workers

import (
	"context"
	"log/slog"
	"time"

	"daily-chat/ratelimit"
)

// SweepWorker evicts rate-limit windows for identities that have gone
// quiet, bounding the limiter's memory over the process lifetime.
type SweepWorker struct {
	log      *slog.Logger
	limiter  *ratelimit.Limiter
	interval time.Duration
	maxIdle  time.Duration
}

func NewSweepWorker(log *slog.Logger, limiter *ratelimit.Limiter, interval, maxIdle time.Duration) *SweepWorker {
	return &SweepWorker{log: log, limiter: limiter, interval: interval, maxIdle: maxIdle}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := w.limiter.Sweep(w.maxIdle); removed > 0 {
				w.log.Debug("Swept stale rate-limit identities", "removed", removed)
			}
		}
	}
}
