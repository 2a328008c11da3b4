package check

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/remram44/kubernetes-network-checker/internal/cluster"
	"github.com/remram44/kubernetes-network-checker/internal/config"
	"github.com/remram44/kubernetes-network-checker/internal/util/async"
)

// Provisioner creates and tears down one probe pod plus one service per
// node, tracking readiness.
type Provisioner struct {
	gateway   cluster.Gateway
	namespace string
	image     string
	tuning    *config.Tuning
	logger    *zap.Logger
}

// NewProvisioner returns a Provisioner for the configured namespace and
// probe image.
func NewProvisioner(gateway cluster.Gateway, cfg *config.Config, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		gateway:   gateway,
		namespace: cfg.Namespace,
		image:     cfg.Image,
		tuning:    &cfg.Tuning,
		logger:    logger,
	}
}

// ProvisionAll creates one probe per node, waits for readiness, and
// returns every probe, ready or failed. Provisioning of different nodes
// runs concurrently under the configured bound. Per-node failures are
// recorded on the probe, never raised; the returned probes must be handed
// to TeardownAll on every exit path.
func (p *Provisioner) ProvisionAll(ctx context.Context, nodes []cluster.Node) []*Probe {
	probes := make([]*Probe, len(nodes))
	readyTimeout := p.tuning.ReadyTimeoutFor(len(nodes))

	tasks := make([]async.Task, len(nodes))
	for i, node := range nodes {
		probes[i] = NewProbe(node)
		probe := probes[i]
		tasks[i] = async.Task{
			Name: probe.PodName,
			Func: func(taskCtx context.Context) error {
				p.provisionOne(taskCtx, probe, readyTimeout)
				return nil
			},
		}
	}

	if err := async.RunLimited(ctx, p.tuning.ProvisionConcurrency, tasks); err != nil {
		// Only cancellation reaches here; probes whose tasks never ran
		// are still in Provisioning and must not be tested.
		for _, probe := range probes {
			if probe.State == StateProvisioning {
				probe.Fail(fmt.Sprintf("provisioning cancelled: %v", err))
			}
		}
	}

	ready := 0
	for _, probe := range probes {
		if probe.State == StateReady {
			ready++
		}
	}
	p.logger.Info("provisioned probes",
		zap.Int("ready", ready),
		zap.Int("failed", len(probes)-ready),
	)
	return probes
}

// provisionOne creates the pod and service for a single probe and polls
// until the pod is ready. All failure modes land in probe.Fail.
func (p *Provisioner) provisionOne(ctx context.Context, probe *Probe, readyTimeout time.Duration) {
	spec := cluster.WorkloadSpec{
		Name:   probe.PodName,
		Node:   probe.Node.Name,
		Image:  p.image,
		Labels: cluster.ProbeLabels(probe.Node.Name),
		Port:   cluster.ProbePort,
	}
	if err := p.gateway.CreateWorkload(ctx, p.namespace, spec); err != nil {
		probe.Fail(fmt.Sprintf("creating workload: %v", err))
		return
	}

	endpoint := cluster.EndpointSpec{
		Name:     probe.ServiceName,
		Selector: cluster.ProbeLabels(probe.Node.Name),
		Port:     cluster.ProbePort,
	}
	if err := p.gateway.CreateEndpoint(ctx, p.namespace, endpoint); err != nil {
		probe.Fail(fmt.Sprintf("creating endpoint: %v", err))
		return
	}

	if err := p.waitReady(ctx, probe, readyTimeout); err != nil {
		probe.Fail(err.Error())
		return
	}
	probe.State = StateReady
}

// waitReady polls the workload status with capped exponential backoff
// until it reports ready, fails terminally, or the timeout elapses.
func (p *Provisioner) waitReady(ctx context.Context, probe *Probe, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := wait.Backoff{
		Duration: p.tuning.ReadyPollInitial,
		Factor:   p.tuning.ReadyPollFactor,
		Cap:      p.tuning.ReadyPollCap,
		// Steps bounds attempts; the context timeout is the real limit.
		Steps: 1000,
	}

	err := wait.ExponentialBackoffWithContext(waitCtx, backoff, func(pollCtx context.Context) (bool, error) {
		status, err := p.gateway.WorkloadStatus(pollCtx, p.namespace, probe.PodName)
		if err != nil {
			// Transient API errors are retried by the backoff loop.
			return false, nil
		}
		switch status {
		case cluster.StatusReady:
			return true, nil
		case cluster.StatusFailed:
			return false, fmt.Errorf("workload entered failed state")
		default:
			return false, nil
		}
	})
	if err != nil {
		if wait.Interrupted(err) {
			return fmt.Errorf("workload not ready after %v: %w", timeout, err)
		}
		return err
	}
	return nil
}

// TeardownAll deletes every checker-owned pod and service. It is
// unconditional: it runs on success, partial failure, and cancellation
// alike, under its own context so an aborted cycle still cleans up.
// Resources are collected by label selector, which also sweeps orphans
// left by a crashed earlier run. Individual delete failures are returned
// for logging and never stop the remaining deletions.
func (p *Provisioner) TeardownAll(probes []*Probe) []error {
	ctx, cancel := context.WithTimeout(context.Background(), p.tuning.TeardownTimeout)
	defer cancel()

	for _, probe := range probes {
		probe.State = StateTearingDown
	}

	var errs []error

	pods, err := p.gateway.ListWorkloads(ctx, p.namespace, cluster.Selector())
	if err != nil {
		errs = append(errs, fmt.Errorf("listing workloads for teardown: %w", err))
		// Fall back to the cycle's own probe names.
		pods = nil
		for _, probe := range probes {
			pods = append(pods, probe.PodName)
		}
	}
	p.logger.Info("deleting probe workloads", zap.Int("count", len(pods)))
	for _, name := range pods {
		if err := p.gateway.DeleteWorkload(ctx, p.namespace, name); err != nil {
			errs = append(errs, fmt.Errorf("deleting workload %s: %w", name, err))
		}
	}

	services, err := p.gateway.ListEndpoints(ctx, p.namespace, cluster.Selector())
	if err != nil {
		errs = append(errs, fmt.Errorf("listing endpoints for teardown: %w", err))
		services = nil
		for _, probe := range probes {
			services = append(services, probe.ServiceName)
		}
	}
	p.logger.Info("deleting probe endpoints", zap.Int("count", len(services)))
	for _, name := range services {
		if err := p.gateway.DeleteEndpoint(ctx, p.namespace, name); err != nil {
			errs = append(errs, fmt.Errorf("deleting endpoint %s: %w", name, err))
		}
	}

	for _, probe := range probes {
		probe.State = StateGone
	}

	for _, err := range errs {
		p.logger.Warn("teardown error", zap.Error(err))
	}
	return errs
}
