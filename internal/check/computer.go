package check

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/cluster"
	"github.com/remram44/kubernetes-network-checker/internal/config"
	"github.com/remram44/kubernetes-network-checker/internal/util/async"
	"github.com/remram44/kubernetes-network-checker/internal/util/retry"
)

// statusSentinel prefixes the HTTP status the probe command writes to
// stdout, so test output is unambiguous even if the probe image logs.
const statusSentinel = "netcheck_status="

// Computer runs the pairwise reachability tests and aggregates results
// into a Matrix.
type Computer struct {
	gateway   cluster.Gateway
	namespace string
	tuning    *config.Tuning
	logger    *zap.Logger
}

// NewComputer returns a Computer using the configured namespace and
// tuning.
func NewComputer(gateway cluster.Gateway, cfg *config.Config, logger *zap.Logger) *Computer {
	return &Computer{
		gateway:   gateway,
		namespace: cfg.Namespace,
		tuning:    &cfg.Tuning,
		logger:    logger,
	}
}

// Compute tests every ordered pair of probes and returns the full matrix:
// one entry per ordered pair with source != target, no gaps. Pairs
// involving a probe that never became ready are ProbeUnavailable and no
// exec is attempted for them. Eligible pairs run concurrently under the
// test concurrency bound, each with its own timeout, so one slow pair
// never blocks the others.
func (c *Computer) Compute(ctx context.Context, probes []*Probe) *Matrix {
	for _, probe := range probes {
		if probe.State == StateReady {
			probe.State = StateTesting
		}
	}

	type pair struct {
		source, target *Probe
	}
	var pairs []pair
	for _, source := range probes {
		for _, target := range probes {
			if source.Node.Name == target.Node.Name {
				continue
			}
			pairs = append(pairs, pair{source: source, target: target})
		}
	}

	results := make([]PairResult, len(pairs))
	var tasks []async.Task
	for i, pr := range pairs {
		results[i] = PairResult{Source: pr.source.Node.Name, Target: pr.target.Node.Name}

		if !pr.source.Usable() || !pr.target.Usable() {
			results[i].Outcome = ProbeUnavailable
			results[i].Detail = unavailableDetail(pr.source, pr.target)
			continue
		}

		tasks = append(tasks, async.Task{
			Name: fmt.Sprintf("%s->%s", pr.source.Node.Name, pr.target.Node.Name),
			Func: func(taskCtx context.Context) error {
				c.testPair(taskCtx, pr.source, pr.target, &results[i])
				return nil
			},
		})
	}

	if err := async.RunLimited(ctx, c.tuning.TestConcurrency, tasks); err != nil {
		c.logger.Warn("matrix computation interrupted", zap.Error(err))
	}

	matrix := NewMatrix()
	for i := range results {
		if results[i].Outcome == "" {
			// The task never ran (cancellation); the pair still gets a
			// terminal entry rather than silently vanishing.
			results[i].Outcome = TestError
			results[i].Detail = "test cancelled"
		}
		matrix.Set(results[i])
	}

	for _, probe := range probes {
		if probe.State == StateTesting {
			probe.State = StateReady
		}
	}
	return matrix
}

// testPair runs one reachability test with retries and writes the
// terminal outcome into result.
func (c *Computer) testPair(ctx context.Context, source, target *Probe, result *PairResult) {
	c.logger.Debug("testing pair",
		zap.String("source", source.Node.Name),
		zap.String("target", target.Node.Name),
	)

	command := c.probeCommand(target)

	var (
		execResult cluster.ExecResult
		latency    time.Duration
	)
	retryCfg := retry.Config{
		Attempts: c.tuning.TestAttempts,
		Initial:  c.tuning.TestRetryInitial,
		Cap:      c.tuning.TestTimeout,
		Factor:   2.0,
	}
	err := retry.Do(ctx, retryCfg, func(attemptCtx context.Context) error {
		result.Attempts++

		execCtx, cancel := context.WithTimeout(attemptCtx, c.tuning.TestTimeout)
		defer cancel()

		start := time.Now()
		res, err := c.gateway.Exec(execCtx, c.namespace, source.PodName, command)
		if err != nil {
			return err
		}
		execResult = res
		latency = time.Since(start)
		return nil
	})
	if err != nil {
		result.Outcome = TestError
		result.Detail = err.Error()
		return
	}

	status := strings.TrimSpace(execResult.Stdout)
	if execResult.ExitCode == 0 && strings.Contains(status, statusSentinel+"200") {
		result.Outcome = Reachable
		result.Latency = latency
		return
	}
	result.Outcome = Unreachable
	result.Detail = unreachableDetail(execResult)
}

// probeCommand builds the command run inside the source probe to contact
// the target's endpoint.
func (c *Computer) probeCommand(target *Probe) []string {
	connectTimeout := int(c.tuning.ConnectTimeout.Seconds())
	if connectTimeout < 1 {
		connectTimeout = 1
	}
	return []string{
		"curl",
		"-s", "-o", "/dev/null",
		"-w", statusSentinel + "%{http_code}",
		"--connect-timeout", strconv.Itoa(connectTimeout),
		cluster.ProbeURL(target.Node.Name),
	}
}

func unavailableDetail(source, target *Probe) string {
	if !source.Usable() {
		return fmt.Sprintf("source probe %s: %s", source.State, source.Reason)
	}
	return fmt.Sprintf("target probe %s: %s", target.State, target.Reason)
}

func unreachableDetail(res cluster.ExecResult) string {
	status := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return fmt.Sprintf("probe command exited %d (%s)", res.ExitCode, status)
	}
	return status
}
