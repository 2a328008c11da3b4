package cluster

import "context"

// Node is a member machine of the cluster, snapshotted at discovery time.
type Node struct {
	Name   string
	Labels map[string]string
}

// WorkloadStatus is the coarse lifecycle state of a probe workload.
type WorkloadStatus string

const (
	StatusPending WorkloadStatus = "pending"
	StatusReady   WorkloadStatus = "ready"
	StatusFailed  WorkloadStatus = "failed"
)

// ExecResult captures the outcome of a command run inside a workload.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// WorkloadSpec describes a probe pod to create.
type WorkloadSpec struct {
	Name   string
	Node   string // node the pod is pinned to
	Image  string
	Labels map[string]string
	Port   int
}

// EndpointSpec describes a Service fronting a single probe pod.
type EndpointSpec struct {
	Name     string
	Selector map[string]string
	Port     int
}

// Gateway defines the cluster API surface consumed by the checker.
type Gateway interface {
	// ListNodes returns the current node set.
	ListNodes(ctx context.Context) ([]Node, error)

	// CreateWorkload creates a pod pinned to spec.Node.
	CreateWorkload(ctx context.Context, namespace string, spec WorkloadSpec) error

	// DeleteWorkload deletes a pod by name.
	DeleteWorkload(ctx context.Context, namespace, name string) error

	// ListWorkloads returns the names of pods matching the label selector.
	ListWorkloads(ctx context.Context, namespace, selector string) ([]string, error)

	// WorkloadStatus reports the lifecycle state of a pod.
	WorkloadStatus(ctx context.Context, namespace, name string) (WorkloadStatus, error)

	// CreateEndpoint creates a Service routing to the pods matched by
	// spec.Selector.
	CreateEndpoint(ctx context.Context, namespace string, spec EndpointSpec) error

	// DeleteEndpoint deletes a Service by name.
	DeleteEndpoint(ctx context.Context, namespace, name string) error

	// ListEndpoints returns the names of Services matching the label selector.
	ListEndpoints(ctx context.Context, namespace, selector string) ([]string, error)

	// Exec runs command inside the named pod and captures its result. A
	// non-zero exit code is reported through ExecResult, not an error;
	// errors are reserved for transport failures.
	Exec(ctx context.Context, namespace, name string, command []string) (ExecResult, error)
}
