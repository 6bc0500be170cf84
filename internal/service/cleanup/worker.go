package cleanup

import (
	"context"
	"log/slog"
	"time"
)

const DefaultInterval = 1 * time.Hour

// AuditPruner drops mirrored audit rows older than a cutoff.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper removes expired keys from a backend without native expiry.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Worker struct {
	pruner    AuditPruner
	sweeper   Sweeper
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	clock     func() time.Time
}

// NewWorker builds the periodic cleanup job. Either of pruner and sweeper
// may be nil.
func NewWorker(pruner AuditPruner, sweeper Sweeper, retention time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		pruner:    pruner,
		sweeper:   sweeper,
		retention: retention,
		interval:  DefaultInterval,
		logger:    logger.With("component", "cleanup"),
		clock:     time.Now,
	}
}

// Enabled reports whether the worker has anything to do.
func (w *Worker) Enabled() bool {
	return w.pruner != nil || w.sweeper != nil
}

// Start runs one pass immediately and then every interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.RunOnce(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("background worker stopped")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
	w.logger.Info("background worker started", "interval", w.interval)
}

// RunOnce executes a single cleanup pass.
func (w *Worker) RunOnce(ctx context.Context) {
	if w.pruner != nil {
		cutoff := w.clock().Add(-w.retention)
		deleted, err := w.pruner.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			w.logger.Error("failed to prune audit mirror", "error", err)
		} else if deleted > 0 {
			w.logger.Info("pruned audit mirror", "deleted", deleted)
		}
	}

	if w.sweeper != nil {
		removed, err := w.sweeper.Sweep(ctx)
		if err != nil {
			w.logger.Error("failed to sweep expired keys", "error", err)
		} else if removed > 0 {
			w.logger.Info("swept expired keys", "removed", removed)
		}
	}
}
