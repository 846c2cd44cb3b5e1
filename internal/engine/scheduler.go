package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Scheduler drives the engine on a fixed interval with at most one poll in
// flight. A tick that lands while a poll is running is dropped, not queued:
// the next tick re-scans everything still unseen, so nothing is lost.
//
// The guard is an atomic.Bool rather than a plain flag because ticks are
// delivered on goroutines here; compare-and-swap preserves the same
// drop-don't-queue semantics.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewScheduler creates a Scheduler polling at the given interval.
func NewScheduler(e *Engine, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{engine: e, interval: interval, logger: logger}
}

// Run polls immediately, then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("poll scheduler started", "interval", s.interval)

	s.TryPoll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll scheduler stopped")
			return
		case <-ticker.C:
			go s.TryPoll(ctx)
		}
	}
}

// TryPoll runs one cycle unless a poll is already in flight, in which case
// the tick is dropped. Returns whether a cycle ran.
func (s *Scheduler) TryPoll(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("poll already in flight, tick dropped")
		return false
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	sum, err := s.engine.RunCycle(ctx)
	if err != nil {
		// Transient failures retry naturally on the next tick.
		s.logger.Error("poll cycle failed", "error", err, "elapsed", time.Since(start))
		return true
	}
	if sum.Saved > 0 {
		s.logger.Info("poll cycle complete",
			"containers", sum.Containers,
			"saved", sum.Saved,
			"new_messages", sum.NewMessages,
			"elapsed", time.Since(start),
		)
	} else {
		s.logger.Debug("poll cycle complete, nothing new",
			"containers", sum.Containers,
			"elapsed", time.Since(start),
		)
	}
	return true
}
