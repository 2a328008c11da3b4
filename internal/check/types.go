package check

import (
	"sort"
	"time"

	"github.com/remram44/kubernetes-network-checker/internal/cluster"
)

// Outcome is the terminal result of one pairwise reachability test.
type Outcome string

const (
	// Reachable: the source probe contacted the target's endpoint.
	Reachable Outcome = "Reachable"
	// Unreachable: the test command ran but could not reach the target.
	Unreachable Outcome = "Unreachable"
	// ProbeUnavailable: source or target probe never became ready, no
	// test was attempted.
	ProbeUnavailable Outcome = "ProbeUnavailable"
	// TestError: the exec itself kept failing after the retry budget.
	TestError Outcome = "TestError"
)

// PairResult is the outcome for one ordered (source, target) node pair.
type PairResult struct {
	Source   string
	Target   string
	Outcome  Outcome
	Latency  time.Duration // set for Reachable results
	Detail   string        // error or status detail, empty for Reachable
	Attempts int           // exec attempts spent on this pair
}

// PairKey identifies an ordered node pair.
type PairKey struct {
	Source string
	Target string
}

// Matrix is the complete set of pair results for one cycle. It holds one
// entry per ordered pair with source != target and nothing on the
// diagonal. It is written by a single goroutine during aggregation and
// immutable afterwards.
type Matrix struct {
	pairs map[PairKey]PairResult
}

// NewMatrix returns an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{pairs: make(map[PairKey]PairResult)}
}

// Set records a pair result, replacing any previous entry for the pair.
func (m *Matrix) Set(result PairResult) {
	m.pairs[PairKey{Source: result.Source, Target: result.Target}] = result
}

// Get returns the result for an ordered pair.
func (m *Matrix) Get(source, target string) (PairResult, bool) {
	result, ok := m.pairs[PairKey{Source: source, Target: target}]
	return result, ok
}

// Len returns the number of recorded pairs.
func (m *Matrix) Len() int {
	return len(m.pairs)
}

// Results returns all pair results ordered by (source, target) for
// reproducible rendering.
func (m *Matrix) Results() []PairResult {
	results := make([]PairResult, 0, len(m.pairs))
	for _, result := range m.pairs {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].Target < results[j].Target
	})
	return results
}

// Partial reports whether any pair failed to produce a real test verdict.
func (m *Matrix) Partial() bool {
	for _, result := range m.pairs {
		if result.Outcome == TestError || result.Outcome == ProbeUnavailable {
			return true
		}
	}
	return false
}

// CycleStatus is the overall verdict for one check cycle.
type CycleStatus string

const (
	CycleCompleted       CycleStatus = "Completed"
	CyclePartiallyFailed CycleStatus = "PartiallyFailed"
	CycleAborted         CycleStatus = "Aborted"
)

// Cycle is one full provision, test, report, teardown sequence. Its
// probes never outlive it.
type Cycle struct {
	Start    time.Time
	Duration time.Duration
	Nodes    []cluster.Node
	Probes   []*Probe
	Matrix   *Matrix
	Status   CycleStatus
	Err      error // abort cause, nil unless Status is CycleAborted
}

// ExpectedPairs returns the number of entries a complete matrix holds for
// this cycle's node count.
func (c *Cycle) ExpectedPairs() int {
	n := len(c.Nodes)
	return n * (n - 1)
}
