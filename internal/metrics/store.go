// Package metrics exposes check results to Prometheus. The last
// completed cycle is published as an immutable snapshot behind an atomic
// pointer, so the scrape path never observes a partially updated matrix.
package metrics

import (
	"sync/atomic"
	"time"
)

// PairSample is the exported state of one ordered node pair. Reachable is
// strictly binary: ProbeUnavailable and TestError count as not reachable,
// never as ok.
type PairSample struct {
	Source    string
	Target    string
	Reachable bool
}

// Snapshot is one cycle's results, frozen for exposition.
type Snapshot struct {
	CompletedAt time.Time
	Nodes       int
	ProbesReady int
	Pairs       []PairSample
}

// Store publishes snapshots with an atomic pointer swap.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store; Snapshot returns nil until the first
// Publish.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Snapshot returns the last published snapshot, or nil before the first
// cycle completes.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}
