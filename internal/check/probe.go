package check

import (
	"github.com/remram44/kubernetes-network-checker/internal/cluster"
)

// ProbeState tracks a probe through its lifecycle:
// Provisioning -> Ready -> Testing -> TearingDown -> Gone, with Failed
// reachable from any state.
type ProbeState string

const (
	StateProvisioning ProbeState = "Provisioning"
	StateReady        ProbeState = "Ready"
	StateTesting      ProbeState = "Testing"
	StateTearingDown  ProbeState = "TearingDown"
	StateGone         ProbeState = "Gone"
	StateFailed       ProbeState = "Failed"
)

// Probe is one node's probe workload plus its endpoint. A probe is owned
// by the cycle that created it; State is written by exactly one goroutine
// at a time (the provisioning task, then the cycle runner).
type Probe struct {
	Node        cluster.Node
	PodName     string
	ServiceName string
	State       ProbeState
	Reason      string // failure detail when State is StateFailed
}

// NewProbe returns a probe in the Provisioning state for a node.
func NewProbe(node cluster.Node) *Probe {
	name := cluster.ProbeName(node.Name)
	return &Probe{
		Node:        node,
		PodName:     name,
		ServiceName: name,
		State:       StateProvisioning,
	}
}

// Usable reports whether the probe can take part in reachability tests.
func (p *Probe) Usable() bool {
	return p.State == StateReady || p.State == StateTesting
}

// Fail moves the probe to Failed with a reason. Failed probes are
// excluded from testing but still recorded and torn down.
func (p *Probe) Fail(reason string) {
	p.State = StateFailed
	p.Reason = reason
}
