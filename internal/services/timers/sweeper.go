package timers

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper enforces project estimates on the server: every interval it stops
// running project timers whose estimate is used up.
type Sweeper struct {
	service  *TimerService
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(service *TimerService, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		log: slog.Default().With(
			slog.String("layer", "worker"),
			slog.String("worker", "EstimateSweeper"),
		),
	}
}

// Run sweeps until ctx is cancelled. A non-positive interval returns
// immediately.
func (w *Sweeper) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("sweeper disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("sweeper started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns how many timers it stopped.
func (w *Sweeper) SweepOnce(ctx context.Context) int {
	stopped, err := w.service.ExpireOverdue(ctx)
	if err != nil {
		w.log.Error("sweep failed", "err", err, "stopped", stopped)
	}
	if stopped > 0 {
		w.log.Info("sweep stopped overdue timers", "stopped", stopped)
	}
	return stopped
}
