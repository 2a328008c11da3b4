// Package fakes provides an in-memory Gateway for tests.
package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/remram44/kubernetes-network-checker/internal/cluster"
)

// ExecCall records one Exec invocation against the fake.
type ExecCall struct {
	Pod     string
	Command []string
}

// Gateway simulates the cluster API. Pods become ready after a
// configurable number of status polls, execs can be made to fail at the
// transport level a configurable number of times, and every mutation is
// recorded for assertions.
type Gateway struct {
	mu sync.Mutex

	// NodeList is returned by ListNodes; NodesErr overrides it.
	NodeList []cluster.Node
	NodesErr error

	// ReadyAfterPolls delays readiness: a pod reports pending for that
	// many WorkloadStatus calls. Negative means the pod never becomes
	// ready. Unlisted pods are ready immediately.
	ReadyAfterPolls map[string]int

	// FailedPods report StatusFailed from WorkloadStatus.
	FailedPods map[string]bool

	// ExecFunc handles Exec calls; when nil every exec succeeds with
	// a 200 status line. TransportFailures makes the first N execs
	// against a pod fail at the transport level before ExecFunc runs.
	ExecFunc          func(pod string, command []string) (cluster.ExecResult, error)
	TransportFailures map[string]int

	// Per-resource error injection for CRUD calls, keyed by name.
	CreatePodErr     map[string]error
	CreateServiceErr map[string]error
	DeletePodErr     map[string]error
	DeleteServiceErr map[string]error

	pods     map[string]cluster.WorkloadSpec
	services map[string]cluster.EndpointSpec
	polls    map[string]int

	ExecCalls       []ExecCall
	DeletedPods     []string
	DeletedServices []string
}

var _ cluster.Gateway = (*Gateway)(nil)

// NewGateway returns a fake with the given nodes, all probes immediately
// ready and all execs reporting reachable.
func NewGateway(nodeNames ...string) *Gateway {
	nodes := make([]cluster.Node, 0, len(nodeNames))
	for _, name := range nodeNames {
		nodes = append(nodes, cluster.Node{Name: name})
	}
	return &Gateway{
		NodeList:          nodes,
		ReadyAfterPolls:   make(map[string]int),
		FailedPods:        make(map[string]bool),
		TransportFailures: make(map[string]int),
		CreatePodErr:      make(map[string]error),
		CreateServiceErr:  make(map[string]error),
		DeletePodErr:      make(map[string]error),
		DeleteServiceErr:  make(map[string]error),
		pods:              make(map[string]cluster.WorkloadSpec),
		services:          make(map[string]cluster.EndpointSpec),
		polls:             make(map[string]int),
	}
}

func (g *Gateway) ListNodes(_ context.Context) ([]cluster.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.NodesErr != nil {
		return nil, g.NodesErr
	}
	out := make([]cluster.Node, len(g.NodeList))
	copy(out, g.NodeList)
	return out, nil
}

func (g *Gateway) CreateWorkload(_ context.Context, _ string, spec cluster.WorkloadSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.CreatePodErr[spec.Name]; err != nil {
		return err
	}
	if _, exists := g.pods[spec.Name]; exists {
		return fmt.Errorf("pod %q already exists", spec.Name)
	}
	g.pods[spec.Name] = spec
	return nil
}

func (g *Gateway) DeleteWorkload(_ context.Context, _ string, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.DeletePodErr[name]; err != nil {
		return err
	}
	delete(g.pods, name)
	g.DeletedPods = append(g.DeletedPods, name)
	return nil
}

func (g *Gateway) ListWorkloads(_ context.Context, _ string, _ string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.pods))
	for name := range g.pods {
		names = append(names, name)
	}
	return names, nil
}

func (g *Gateway) WorkloadStatus(_ context.Context, _ string, name string) (cluster.WorkloadStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.pods[name]; !exists {
		return "", fmt.Errorf("pod %q not found", name)
	}
	if g.FailedPods[name] {
		return cluster.StatusFailed, nil
	}
	after, configured := g.ReadyAfterPolls[name]
	if !configured {
		return cluster.StatusReady, nil
	}
	if after < 0 {
		return cluster.StatusPending, nil
	}
	g.polls[name]++
	if g.polls[name] > after {
		return cluster.StatusReady, nil
	}
	return cluster.StatusPending, nil
}

func (g *Gateway) CreateEndpoint(_ context.Context, _ string, spec cluster.EndpointSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.CreateServiceErr[spec.Name]; err != nil {
		return err
	}
	if _, exists := g.services[spec.Name]; exists {
		return fmt.Errorf("service %q already exists", spec.Name)
	}
	g.services[spec.Name] = spec
	return nil
}

func (g *Gateway) DeleteEndpoint(_ context.Context, _ string, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.DeleteServiceErr[name]; err != nil {
		return err
	}
	delete(g.services, name)
	g.DeletedServices = append(g.DeletedServices, name)
	return nil
}

func (g *Gateway) ListEndpoints(_ context.Context, _ string, _ string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.services))
	for name := range g.services {
		names = append(names, name)
	}
	return names, nil
}

func (g *Gateway) Exec(_ context.Context, _ string, name string, command []string) (cluster.ExecResult, error) {
	g.mu.Lock()
	g.ExecCalls = append(g.ExecCalls, ExecCall{Pod: name, Command: command})
	if g.TransportFailures[name] > 0 {
		g.TransportFailures[name]--
		g.mu.Unlock()
		return cluster.ExecResult{}, fmt.Errorf("transport failure for pod %q", name)
	}
	execFunc := g.ExecFunc
	g.mu.Unlock()

	if execFunc != nil {
		return execFunc(name, command)
	}
	return cluster.ExecResult{ExitCode: 0, Stdout: "netcheck_status=200"}, nil
}

// PodCount returns the number of pods currently in the fake.
func (g *Gateway) PodCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pods)
}

// ServiceCount returns the number of services currently in the fake.
func (g *Gateway) ServiceCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.services)
}

// ExecCallsFor returns the exec invocations recorded against a pod.
func (g *Gateway) ExecCallsFor(pod string) []ExecCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	var calls []ExecCall
	for _, call := range g.ExecCalls {
		if call.Pod == pod {
			calls = append(calls, call)
		}
	}
	return calls
}
