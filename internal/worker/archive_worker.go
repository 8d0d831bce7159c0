package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/infrastructure/config"
	"github.com/taskboard/core/internal/infrastructure/logger"
)

// ArchiveWorker runs the auto-archive sweep on a fixed interval. One sweep
// runs immediately on start so a long interval does not delay the first pass
// after a restart.
type ArchiveWorker struct {
	tasks    *services.TaskService
	interval time.Duration
	archived prometheus.Counter
	logger   *logger.Logger
}

func NewArchiveWorker(tasks *services.TaskService, cfg config.SweepConfig, archived prometheus.Counter, logger *logger.Logger) *ArchiveWorker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ArchiveWorker{
		tasks:    tasks,
		interval: interval,
		archived: archived,
		logger:   logger.WithComponent("archive_worker"),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *ArchiveWorker) Run(ctx context.Context) {
	w.logger.Infow("archive worker started", "interval", w.interval.String())

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("archive worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ArchiveWorker) sweep(ctx context.Context) {
	count, err := w.tasks.AutoArchiveDone(ctx)
	if err != nil {
		w.logger.Errorw("auto-archive sweep failed", "error", err)
		return
	}
	if w.archived != nil {
		w.archived.Add(float64(count))
	}
	if count > 0 {
		w.logger.Infow("auto-archive sweep completed", "archived", count)
	}
}
