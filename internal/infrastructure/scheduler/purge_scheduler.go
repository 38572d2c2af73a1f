// Package scheduler runs the background purge of expired authorization codes.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/logger"
)

// PurgeScheduler periodically sweeps expired authorization codes. Sweeps are
// single-flight: a tick that fires while the previous sweep is still running
// is skipped, never queued. Sweep failures are logged and retried on the next
// tick; the scheduler itself never terminates on error.
type PurgeScheduler struct {
	codes    service.AuthCodeService
	interval time.Duration
	log      logger.Logger

	mu      sync.Mutex
	running bool

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewPurgeScheduler builds the scheduler; Start must be called to run it.
func NewPurgeScheduler(codes service.AuthCodeService, interval time.Duration, log logger.Logger) *PurgeScheduler {
	return &PurgeScheduler{
		codes:    codes,
		interval: interval,
		log:      log.WithComponent("purge_scheduler"),
		stopped:  make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called.
// It blocks; callers run it on its own goroutine.
func (s *PurgeScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info(ctx, "purge scheduler started", logger.Fields{"interval": s.interval.String()})

	for {
		select {
		case <-ctx.Done():
			s.log.Info(context.Background(), "purge scheduler stopped")
			return
		case <-s.stopped:
			s.log.Info(context.Background(), "purge scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop terminates the loop. Safe to call more than once.
func (s *PurgeScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// RunOnce executes a single sweep immediately, subject to the same
// re-entrance guard as ticked sweeps. It reports whether the sweep ran.
func (s *PurgeScheduler) RunOnce(ctx context.Context) bool {
	return s.sweep(ctx)
}

func (s *PurgeScheduler) sweep(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn(ctx, "previous purge sweep still running, skipping tick")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// Deleting expired rows is idempotent, so a sweep aborted by shutdown
	// leaves nothing inconsistent for the next run.
	deleted, err := s.codes.PurgeExpired(ctx, time.Now())
	if err != nil {
		s.log.Error(ctx, "purge sweep failed, will retry next tick", err)
		return true
	}
	s.log.Debug(ctx, "purge sweep complete", logger.Fields{"deleted": deleted})
	return true
}
