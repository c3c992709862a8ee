package scanner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStopOnCancel_RetriesUntilStopped(t *testing.T) {
	var calls atomic.Int32
	stop := func() error {
		if calls.Add(1) < 3 {
			return errors.New("not scanning yet")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stopOnCancel(ctx, make(chan struct{}), stop, time.Millisecond)

	if got := calls.Load(); got != 3 {
		t.Errorf("stop calls = %d, want 3", got)
	}
}

func TestStopOnCancel_ScanAlreadyEnded(t *testing.T) {
	// Both channels ready: the ended scan wins and stop is never called
	for i := 0; i < 100; i++ {
		var calls atomic.Int32
		stop := func() error {
			calls.Add(1)
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		done := make(chan struct{})
		close(done)

		stopOnCancel(ctx, done, stop, time.Millisecond)
		if got := calls.Load(); got != 0 {
			t.Fatalf("iteration %d: stop calls = %d, want 0", i, got)
		}
	}
}

func TestStopOnCancel_NoStopAfterScanEnds(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	stop := func() error {
		if calls.Add(1) == 1 {
			// The scan ends while the first attempt fails
			close(done)
		}
		return errors.New("not scanning yet")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finished := make(chan struct{})
	go func() {
		stopOnCancel(ctx, done, stop, time.Millisecond)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("stopOnCancel did not return after the scan ended")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("stop calls = %d, want 1", got)
	}
}

func TestStopOnCancel_ScanEndsBeforeCancel(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	close(done)

	stopOnCancel(context.Background(), done, func() error {
		calls.Add(1)
		return nil
	}, time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("stop calls = %d, want 0", got)
	}
}
