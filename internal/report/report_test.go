package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/check"
	"github.com/remram44/kubernetes-network-checker/internal/cluster"
	"github.com/remram44/kubernetes-network-checker/internal/metrics"
)

func newTestReporter() (*Reporter, *metrics.Store, *bytes.Buffer) {
	store := metrics.NewStore()
	m := metrics.New(store)
	r := New(zap.NewNop(), m, store)
	buf := &bytes.Buffer{}
	r.out = buf
	return r, store, buf
}

func twoNodeCycle() *check.Cycle {
	nodes := []cluster.Node{{Name: "node-a"}, {Name: "node-b"}}
	matrix := check.NewMatrix()
	matrix.Set(check.PairResult{Source: "node-a", Target: "node-b", Outcome: check.Reachable})
	matrix.Set(check.PairResult{Source: "node-b", Target: "node-a", Outcome: check.Unreachable, Detail: "probe command exited 7"})
	probes := []*check.Probe{
		check.NewProbe(nodes[0]),
		check.NewProbe(nodes[1]),
	}
	for _, p := range probes {
		p.State = check.StateReady
	}
	return &check.Cycle{
		Start:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration: 3 * time.Second,
		Nodes:    nodes,
		Probes:   probes,
		Matrix:   matrix,
		Status:   check.CycleCompleted,
	}
}

func TestReport_RendersMatrixTable(t *testing.T) {
	r, _, buf := newTestReporter()

	r.Report(twoNodeCycle())

	out := buf.String()
	assert.Contains(t, out, "NODE-A")
	assert.Contains(t, out, "NODE-B")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "FAIL")
}

func TestReport_TableRowPerNode(t *testing.T) {
	r, _, buf := newTestReporter()

	r.Report(twoNodeCycle())

	rows := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "node-a") || strings.Contains(line, "node-b") {
			rows++
		}
	}
	assert.Equal(t, 2, rows)
}

func TestReport_UnavailableAndErrorCells(t *testing.T) {
	r, _, buf := newTestReporter()

	cycle := twoNodeCycle()
	cycle.Matrix.Set(check.PairResult{Source: "node-a", Target: "node-b", Outcome: check.ProbeUnavailable, Detail: "probe never became ready"})
	cycle.Matrix.Set(check.PairResult{Source: "node-b", Target: "node-a", Outcome: check.TestError, Detail: "test cancelled"})
	cycle.Status = check.CyclePartiallyFailed

	r.Report(cycle)

	out := buf.String()
	assert.Contains(t, out, "unavail")
	assert.Contains(t, out, "error")
	assert.NotContains(t, out, "ok")
}

func TestReport_PublishesSnapshot(t *testing.T) {
	r, store, _ := newTestReporter()

	r.Report(twoNodeCycle())

	snap := store.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.Nodes)
	assert.Equal(t, 2, snap.ProbesReady)
	require.Len(t, snap.Pairs, 2)
	assert.Equal(t, metrics.PairSample{Source: "node-a", Target: "node-b", Reachable: true}, snap.Pairs[0])
	assert.Equal(t, metrics.PairSample{Source: "node-b", Target: "node-a", Reachable: false}, snap.Pairs[1])
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 3, 0, time.UTC), snap.CompletedAt)
}

func TestReport_OnlyReadyProbesCounted(t *testing.T) {
	r, store, _ := newTestReporter()

	cycle := twoNodeCycle()
	cycle.Probes[0].State = check.StateGone
	cycle.Probes[1].Fail("workload entered failed state")
	cycle.Probes = append(cycle.Probes, check.NewProbe(cluster.Node{Name: "node-c"}))
	cycle.Probes[2].State = check.StateReady

	r.Report(cycle)

	snap := store.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.ProbesReady)
}

func TestReport_AbortedCycleKeepsPreviousSnapshot(t *testing.T) {
	r, store, buf := newTestReporter()

	r.Report(twoNodeCycle())
	require.NotNil(t, store.Snapshot())
	previous := store.Snapshot()
	buf.Reset()

	aborted := &check.Cycle{
		Start:    time.Now(),
		Duration: time.Second,
		Status:   check.CycleAborted,
		Err:      assert.AnError,
	}
	r.Report(aborted)

	assert.Same(t, previous, store.Snapshot())
	assert.Empty(t, buf.String())
}

func TestReport_AbortedCycleWithMatrixKeepsPreviousSnapshot(t *testing.T) {
	r, store, buf := newTestReporter()

	r.Report(twoNodeCycle())
	previous := store.Snapshot()
	require.NotNil(t, previous)
	buf.Reset()

	// Cancellation mid-compute yields an aborted cycle whose matrix is
	// padded with cancelled entries instead of measurements.
	aborted := twoNodeCycle()
	aborted.Status = check.CycleAborted
	aborted.Err = context.Canceled
	aborted.Matrix.Set(check.PairResult{Source: "node-a", Target: "node-b", Outcome: check.TestError, Detail: "test cancelled"})
	aborted.Matrix.Set(check.PairResult{Source: "node-b", Target: "node-a", Outcome: check.TestError, Detail: "test cancelled"})

	r.Report(aborted)

	assert.Same(t, previous, store.Snapshot())
	// the table still prints so the abort is visible
	assert.Contains(t, buf.String(), "error")
}
