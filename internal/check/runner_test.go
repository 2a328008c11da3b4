package check

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/cluster/fakes"
)

// recordingReporter captures reported cycles for assertions.
type recordingReporter struct {
	cycles []*Cycle
}

func (r *recordingReporter) Report(cycle *Cycle) {
	r.cycles = append(r.cycles, cycle)
}

func newTestRunner(gateway *fakes.Gateway) (*Runner, *recordingReporter) {
	cfg := testConfig()
	logger := zap.NewNop()
	reporter := &recordingReporter{}
	runner := NewRunner(
		NewDiscoverer(gateway, logger),
		NewProvisioner(gateway, cfg, logger),
		NewComputer(gateway, cfg, logger),
		reporter,
		logger,
	)
	return runner, reporter
}

func TestRun_AllReachable(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway("a", "b", "c")
	runner, reporter := newTestRunner(gateway)

	cycle := runner.Run(context.Background())

	assert.Equal(t, CycleCompleted, cycle.Status)
	require.NotNil(t, cycle.Matrix)
	assert.Equal(t, cycle.ExpectedPairs(), cycle.Matrix.Len())
	assert.Equal(t, 6, cycle.Matrix.Len())

	// Teardown ran: nothing left behind.
	assert.Zero(t, gateway.PodCount())
	assert.Zero(t, gateway.ServiceCount())

	require.Len(t, reporter.cycles, 1)
	assert.Same(t, cycle, reporter.cycles[0])
}

func TestRun_PartialFailure(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway("a", "b", "c")
	gateway.ReadyAfterPolls["netcheck-b"] = -1
	runner, _ := newTestRunner(gateway)

	cycle := runner.Run(context.Background())

	assert.Equal(t, CyclePartiallyFailed, cycle.Status)
	assert.Equal(t, 6, cycle.Matrix.Len())

	unavailable := 0
	for _, result := range cycle.Matrix.Results() {
		if result.Outcome == ProbeUnavailable {
			unavailable++
		}
	}
	assert.Equal(t, 4, unavailable)

	// Failed probes are still torn down with the rest.
	assert.Zero(t, gateway.PodCount())
	assert.Zero(t, gateway.ServiceCount())
}

func TestRun_DiscoveryErrorAborts(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway()
	gateway.NodesErr = errors.New("api down")
	runner, reporter := newTestRunner(gateway)

	cycle := runner.Run(context.Background())

	assert.Equal(t, CycleAborted, cycle.Status)
	var discErr *DiscoveryError
	assert.ErrorAs(t, cycle.Err, &discErr)

	// No provisioning was attempted, no tests ran.
	assert.Zero(t, gateway.PodCount())
	assert.Empty(t, gateway.ExecCalls)
	require.Len(t, reporter.cycles, 1)
}

func TestRun_CancellationStillTearsDown(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway("a", "b")
	runner, _ := newTestRunner(gateway)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cycle := runner.Run(ctx)

	assert.Equal(t, CycleAborted, cycle.Status)
	assert.ErrorIs(t, cycle.Err, context.Canceled)

	// Teardown is the one operation guaranteed to run even during
	// cancellation.
	assert.Zero(t, gateway.PodCount())
	assert.Zero(t, gateway.ServiceCount())
}

func TestRun_MatrixCardinality(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1, 2, 4} {
		gateway := fakes.NewGateway()
		for i := 0; i < n; i++ {
			gateway.NodeList = append(gateway.NodeList, testNodes(string(rune('a'+i)))...)
		}
		runner, _ := newTestRunner(gateway)

		cycle := runner.Run(context.Background())

		assert.Equal(t, n*(n-1), cycle.Matrix.Len(), "nodes=%d", n)
	}
}
