package check

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reporter renders a completed cycle. Implementations must treat the
// cycle as read-only and must not fail the cycle.
type Reporter interface {
	Report(cycle *Cycle)
}

// Runner executes one full check cycle: discover, provision, test,
// report, tear down. Teardown runs on every exit path, including
// discovery failure and cancellation.
type Runner struct {
	discoverer  *Discoverer
	provisioner *Provisioner
	computer    *Computer
	reporter    Reporter
	logger      *zap.Logger
}

// NewRunner assembles a Runner from its components.
func NewRunner(discoverer *Discoverer, provisioner *Provisioner, computer *Computer, reporter Reporter, logger *zap.Logger) *Runner {
	return &Runner{
		discoverer:  discoverer,
		provisioner: provisioner,
		computer:    computer,
		reporter:    reporter,
		logger:      logger,
	}
}

// Run executes one cycle and returns it. The returned cycle always has a
// terminal status; per-node and per-pair failures are data in the matrix,
// only discovery failure aborts.
func (r *Runner) Run(ctx context.Context) *Cycle {
	cycle := &Cycle{Start: time.Now()}
	defer func() {
		cycle.Duration = time.Since(cycle.Start)
	}()

	nodes, err := r.discoverer.Discover(ctx)
	if err != nil {
		cycle.Status = CycleAborted
		cycle.Err = err
		r.logger.Error("cycle aborted", zap.Error(err))
		// Nothing was provisioned this cycle, but the selector sweep
		// still collects leftovers from a previous crashed run.
		r.provisioner.TeardownAll(nil)
		r.reporter.Report(cycle)
		return cycle
	}
	cycle.Nodes = nodes

	cycle.Probes = r.provisioner.ProvisionAll(ctx, nodes)
	defer r.provisioner.TeardownAll(cycle.Probes)

	cycle.Matrix = r.computer.Compute(ctx, cycle.Probes)

	switch {
	case ctx.Err() != nil:
		cycle.Status = CycleAborted
		cycle.Err = ctx.Err()
	case cycle.Matrix.Partial():
		cycle.Status = CyclePartiallyFailed
	default:
		cycle.Status = CycleCompleted
	}

	r.reporter.Report(cycle)
	return cycle
}
