package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error(msg)
}

func TestScheduler_ImmediateFire(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context, full bool) error {
		if full {
			t.Error("scheduled passes must be quick syncs")
		}
		fires.Add(1)
		return nil
	}, nil)
	defer s.Stop()

	s.Start(context.Background(), time.Hour)
	waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }, "scheduler did not fire on start")
}

func TestScheduler_TicksAtInterval(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context, full bool) error {
		fires.Add(1)
		return nil
	}, nil)
	defer s.Stop()

	s.Start(context.Background(), 20*time.Millisecond)
	waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 3 }, "scheduler did not tick repeatedly")
}

func TestScheduler_RestartReplacesTimer(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context, full bool) error {
		fires.Add(1)
		return nil
	}, nil)
	defer s.Stop()

	s.Start(context.Background(), time.Hour)
	waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }, "first start did not fire")

	s.Start(context.Background(), time.Hour)
	waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 2 }, "restart did not fire")

	if !s.Active() {
		t.Error("scheduler should be active after restart")
	}
}

func TestScheduler_Stop(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context, full bool) error {
		fires.Add(1)
		return nil
	}, nil)

	s.Start(context.Background(), 10*time.Millisecond)
	waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }, "scheduler did not fire")

	s.Stop()
	if s.Active() {
		t.Error("scheduler should be inactive after Stop")
	}
	count := fires.Load()
	time.Sleep(50 * time.Millisecond)
	if fires.Load() != count {
		t.Error("scheduler kept firing after Stop")
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s := NewScheduler(func(ctx context.Context, full bool) error { return nil }, nil)
	s.Stop()
	s.Stop()
	if s.Active() {
		t.Error("stopped scheduler reports active")
	}
}
