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

func TestDiscover_SortsByName(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway("node-c", "node-a", "node-b")
	discoverer := NewDiscoverer(gateway, zap.NewNop())

	nodes, err := discoverer.Discover(context.Background())
	require.NoError(t, err)

	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	assert.Equal(t, []string{"node-a", "node-b", "node-c"}, names)
}

func TestDiscover_GatewayError(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway()
	gateway.NodesErr = errors.New("api unavailable")
	discoverer := NewDiscoverer(gateway, zap.NewNop())

	_, err := discoverer.Discover(context.Background())
	var discErr *DiscoveryError
	require.ErrorAs(t, err, &discErr)
	assert.ErrorContains(t, err, "api unavailable")
}

func TestDiscover_ZeroNodes(t *testing.T) {
	t.Parallel()
	gateway := fakes.NewGateway()
	discoverer := NewDiscoverer(gateway, zap.NewNop())

	_, err := discoverer.Discover(context.Background())
	var discErr *DiscoveryError
	require.ErrorAs(t, err, &discErr)
	assert.ErrorIs(t, err, ErrNoNodes)
}
