package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/check"
)

// fakeRunner counts cycles and can block, cancel, or slow each one.
type fakeRunner struct {
	mu       sync.Mutex
	runs     int
	duration time.Duration
	onRun    func(runs int, cancel context.CancelFunc)
	cancel   context.CancelFunc
}

func (f *fakeRunner) Run(ctx context.Context) *check.Cycle {
	f.mu.Lock()
	f.runs++
	runs := f.runs
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(runs, f.cancel)
	}
	if f.duration > 0 {
		time.Sleep(f.duration)
	}
	return &check.Cycle{Status: check.CycleCompleted}
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestRunOnce(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, time.Hour, zap.NewNop())

	cycle := s.RunOnce(context.Background())

	require.NotNil(t, cycle)
	assert.Equal(t, check.CycleCompleted, cycle.Status)
	assert.Equal(t, 1, runner.count())
}

func TestRun_FirstCycleStartsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{cancel: cancel}
	runner.onRun = func(runs int, cancel context.CancelFunc) {
		cancel()
	}
	s := New(runner, time.Hour, zap.NewNop())

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runner.count())
}

func TestRun_RepeatsOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &fakeRunner{cancel: cancel}
	runner.onRun = func(runs int, cancel context.CancelFunc) {
		if runs >= 3 {
			cancel()
		}
	}
	s := New(runner, 5*time.Millisecond, zap.NewNop())

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, runner.count())
}

func TestRun_OverrunningCycleDoesNotOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &fakeRunner{cancel: cancel, duration: 20 * time.Millisecond}
	runner.onRun = func(runs int, cancel context.CancelFunc) {
		if runs >= 2 {
			cancel()
		}
	}
	s := New(runner, time.Millisecond, zap.NewNop())

	start := time.Now()
	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, runner.count())
	// cycles run back to back, never concurrently
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRun_CancelDuringWaitReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{}
	s := New(runner, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// let the first cycle finish and the scheduler enter its wait
	assert.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not return after cancellation")
	}
	assert.Equal(t, 1, runner.count())
}
