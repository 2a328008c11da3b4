// Package scheduler drives check cycles, either once or on a fixed
// interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/check"
)

// CycleRunner runs one complete check cycle.
type CycleRunner interface {
	Run(ctx context.Context) *check.Cycle
}

// Scheduler invokes a CycleRunner on a fixed interval. The interval is
// measured from cycle start to cycle start, so a cycle taking 2 minutes
// on a 15 minute interval is followed by a 13 minute wait. Cycles never
// overlap: a cycle that overruns its interval is followed immediately by
// the next one.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *zap.Logger
}

// New returns a scheduler running cycles every interval.
func New(runner CycleRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// RunOnce runs a single cycle and returns it.
func (s *Scheduler) RunOnce(ctx context.Context) *check.Cycle {
	return s.runner.Run(ctx)
}

// Run executes cycles until ctx is cancelled, starting the first one
// immediately. Cancellation during the wait returns right away; an
// in-flight cycle finishes (including its teardown) before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		start := time.Now()
		cycle := s.runner.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Debug("cycle finished, waiting for next tick",
			zap.String("status", string(cycle.Status)),
			zap.Duration("interval", s.interval),
		)

		wait := s.interval - time.Since(start)
		if wait < 0 {
			s.logger.Warn("cycle overran interval, starting next cycle immediately",
				zap.Duration("elapsed", time.Since(start)),
				zap.Duration("interval", s.interval),
			)
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
