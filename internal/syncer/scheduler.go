package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
)

// SyncFunc runs one sync pass.
type SyncFunc func(ctx context.Context, full bool) error

// Scheduler re-invokes a quick sync at a fixed interval. Re-arming always
// cancels the prior timer first, so at most one timer is active; enabling
// fires an immediate pass. The orchestrator's in-flight guard keeps a slow
// pass from overlapping with the next tick.
type Scheduler struct {
	run SyncFunc
	log *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(run SyncFunc, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{run: run, log: log}
}

// Start arms the timer with the given interval, cancelling any prior one,
// and fires an immediate quick sync.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.log.Info("auto-sync armed", slog.Duration("interval", interval))

	go func() {
		defer close(done)
		s.fire(runCtx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				s.log.Info("auto-sync stopped")
				return
			case <-ticker.C:
				s.fire(runCtx)
			}
		}
	}()
}

// Stop cancels the pending timer and waits for the timer goroutine to
// exit. An in-progress pass is not interrupted beyond context cancellation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Active reports whether a timer is armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) fire(ctx context.Context) {
	err := s.run(ctx, false)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, apperr.ErrSyncInProgress):
		s.log.Debug("auto-sync tick skipped, pass already running")
	default:
		s.log.Error("auto-sync pass failed", slog.String("error", err.Error()))
	}
}
