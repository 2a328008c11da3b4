package check

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/cluster"
)

// ErrNoNodes is returned (wrapped in DiscoveryError) when the cluster
// reports zero nodes; an empty cluster cannot be tested and must not be
// silently skipped.
var ErrNoNodes = errors.New("no nodes discovered")

// DiscoveryError means the node set could not be enumerated. It is fatal
// to the cycle.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("node discovery failed: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discoverer enumerates the nodes to probe.
type Discoverer struct {
	gateway cluster.Gateway
	logger  *zap.Logger
}

// NewDiscoverer returns a Discoverer backed by the gateway.
func NewDiscoverer(gateway cluster.Gateway, logger *zap.Logger) *Discoverer {
	return &Discoverer{gateway: gateway, logger: logger}
}

// Discover returns the current node set sorted by name, so matrix rows
// and columns stay stable across cycles.
func (d *Discoverer) Discover(ctx context.Context) ([]cluster.Node, error) {
	nodes, err := d.gateway.ListNodes(ctx)
	if err != nil {
		return nil, &DiscoveryError{Err: err}
	}
	if len(nodes) == 0 {
		return nil, &DiscoveryError{Err: ErrNoNodes}
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})

	d.logger.Info("discovered nodes", zap.Int("count", len(nodes)))
	return nodes, nil
}
