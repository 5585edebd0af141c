package share

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Worker periodically compacts shares with long pending tails.
type Worker struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewWorker creates a background compaction worker
func NewWorker(service *Service, interval time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start runs compaction sweeps until ctx is cancelled. A non-positive
// interval disables the worker; Start then just waits for ctx.
func (w *Worker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("compaction worker started", zap.Duration("interval", w.interval))
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("compaction worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	start := time.Now()
	n, err := w.service.CompactPending(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Warn("compaction sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("compaction sweep", zap.Int("shares", n), zap.Duration("took", time.Since(start)))
	}
}
