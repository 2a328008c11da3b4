package cluster

import "fmt"

// Naming and labelling for checker-owned resources. Every pod and service
// the checker creates carries the app label so teardown can collect them
// by selector, including orphans left by a crashed earlier run.
const (
	// AppLabelKey / AppLabelValue identify all checker-owned resources.
	AppLabelKey   = "app"
	AppLabelValue = "netcheck"

	// RunLabelKey ties a service to the single probe pod it fronts.
	RunLabelKey = "run"

	// ProbePort is the TCP port the probe workload serves on.
	ProbePort = 80
)

// ProbeName returns the pod and service name for a node's probe.
func ProbeName(node string) string {
	return fmt.Sprintf("netcheck-%s", node)
}

// ProbeLabels returns the labels for a node's probe pod; the service
// selector uses the same set.
func ProbeLabels(node string) map[string]string {
	return map[string]string{
		AppLabelKey: AppLabelValue,
		RunLabelKey: ProbeName(node),
	}
}

// Selector returns the label selector matching every checker-owned resource.
func Selector() string {
	return AppLabelKey + "=" + AppLabelValue
}

// ProbeURL returns the URL a source probe uses to reach a target node's
// endpoint.
func ProbeURL(targetNode string) string {
	return fmt.Sprintf("http://%s/", ProbeName(targetNode))
}
