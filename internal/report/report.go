// Package report renders cycle results for humans and for metrics. It is
// purely observational: nothing in here mutates a cycle or fails one.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/check"
	"github.com/remram44/kubernetes-network-checker/internal/metrics"
)

// Cell text for the table, matching outcome severity.
const (
	cellReachable   = "ok"
	cellUnreachable = "FAIL"
	cellUnavailable = "unavail"
	cellTestError   = "error"
)

// Reporter renders the matrix as a table and publishes metric samples.
type Reporter struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *metrics.Store
	out     io.Writer
}

var _ check.Reporter = (*Reporter)(nil)

// New returns a Reporter writing tables to stdout.
func New(logger *zap.Logger, m *metrics.Metrics, store *metrics.Store) *Reporter {
	return &Reporter{
		logger:  logger,
		metrics: m,
		store:   store,
		out:     os.Stdout,
	}
}

// Report renders and publishes one finished cycle. The final table always
// prints, showing exactly which pairs failed and how; an aborted cycle
// prints its abort cause instead of a matrix. Sink failures are surfaced
// as warnings only.
func (r *Reporter) Report(cycle *check.Cycle) {
	r.metrics.RecordCycle(string(cycle.Status), cycle.Duration)

	if cycle.Matrix == nil {
		r.logger.Warn("cycle produced no matrix",
			zap.String("status", string(cycle.Status)),
			zap.Error(cycle.Err),
		)
		return
	}

	counts := countOutcomes(cycle.Matrix)
	r.logger.Info("cycle complete",
		zap.String("status", string(cycle.Status)),
		zap.Duration("duration", cycle.Duration),
		zap.Int("nodes", len(cycle.Nodes)),
		zap.Int("reachable", counts[check.Reachable]),
		zap.Int("unreachable", counts[check.Unreachable]),
		zap.Int("unavailable", counts[check.ProbeUnavailable]),
		zap.Int("errors", counts[check.TestError]),
	)

	if _, err := fmt.Fprintln(r.out, r.renderTable(cycle)); err != nil {
		r.logger.Warn("failed to write result table", zap.Error(err))
	}

	// An aborted cycle's matrix is padded with cancelled entries, not
	// measurements. The last completed snapshot keeps serving instead.
	if cycle.Status != check.CycleAborted {
		r.publish(cycle)
	}
}

// renderTable builds the matrix table: nodes as both row and column
// headers, diagonal cells blank.
func (r *Reporter) renderTable(cycle *check.Cycle) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{""}
	for _, node := range cycle.Nodes {
		header = append(header, node.Name)
	}
	t.AppendHeader(header)

	for _, source := range cycle.Nodes {
		row := table.Row{source.Name}
		for _, target := range cycle.Nodes {
			if source.Name == target.Name {
				row = append(row, "")
				continue
			}
			row = append(row, cellFor(cycle.Matrix, source.Name, target.Name))
		}
		t.AppendRow(row)
	}

	return t.Render()
}

// publish freezes the matrix into a metrics snapshot.
func (r *Reporter) publish(cycle *check.Cycle) {
	ready := 0
	for _, probe := range cycle.Probes {
		if probe.State == check.StateReady {
			ready++
		}
	}

	results := cycle.Matrix.Results()
	pairs := make([]metrics.PairSample, 0, len(results))
	for _, result := range results {
		pairs = append(pairs, metrics.PairSample{
			Source:    result.Source,
			Target:    result.Target,
			Reachable: result.Outcome == check.Reachable,
		})
	}

	r.store.Publish(&metrics.Snapshot{
		CompletedAt: cycle.Start.Add(cycle.Duration),
		Nodes:       len(cycle.Nodes),
		ProbesReady: ready,
		Pairs:       pairs,
	})
}

func cellFor(matrix *check.Matrix, source, target string) string {
	result, ok := matrix.Get(source, target)
	if !ok {
		return cellTestError
	}
	switch result.Outcome {
	case check.Reachable:
		return cellReachable
	case check.Unreachable:
		return cellUnreachable
	case check.ProbeUnavailable:
		return cellUnavailable
	default:
		return cellTestError
	}
}

func countOutcomes(matrix *check.Matrix) map[check.Outcome]int {
	counts := make(map[check.Outcome]int)
	for _, result := range matrix.Results() {
		counts[result.Outcome]++
	}
	return counts
}
