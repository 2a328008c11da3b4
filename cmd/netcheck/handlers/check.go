// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of
// the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/remram44/kubernetes-network-checker/internal/check"
	"github.com/remram44/kubernetes-network-checker/internal/cluster"
	"github.com/remram44/kubernetes-network-checker/internal/config"
	"github.com/remram44/kubernetes-network-checker/internal/metrics"
	"github.com/remram44/kubernetes-network-checker/internal/report"
	"github.com/remram44/kubernetes-network-checker/internal/scheduler"
)

// CheckOptions carries the check command's flag values. Zero values mean
// the flag was not set and the config file or default applies.
type CheckOptions struct {
	File        string
	Kubeconfig  string
	Namespace   string
	Image       string
	Interval    time.Duration
	MetricsAddr string
	Once        bool
	Debug       bool
}

// ExitError carries a process exit code for --once mode.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newGateway connects to the cluster API.
	newGateway = func(kubeconfigPath string) (cluster.Gateway, error) {
		return cluster.NewClient(kubeconfigPath)
	}

	// newLogger builds the process logger.
	newLogger = buildLogger

	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// newReporter builds the cycle reporter.
	newReporter = func(logger *zap.Logger, m *metrics.Metrics, store *metrics.Store) check.Reporter {
		return report.New(logger, m, store)
	}
)

// Check runs reachability check cycles: once with CheckOptions.Once, or
// continuously with a metrics endpoint otherwise.
func Check(ctx context.Context, opts CheckOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gateway, err := newGateway(cfg.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	store := metrics.NewStore()
	m := metrics.New(store)
	runner := check.NewRunner(
		check.NewDiscoverer(gateway, logger),
		check.NewProvisioner(gateway, cfg, logger),
		check.NewComputer(gateway, cfg, logger),
		newReporter(logger, m, store),
		logger,
	)
	sched := scheduler.New(runner, cfg.Interval, logger)

	if cfg.Once {
		return exitFor(sched.RunOnce(ctx))
	}

	logger.Info("starting continuous checking",
		zap.Duration("interval", cfg.Interval),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("namespace", cfg.Namespace),
	)
	return runForever(ctx, sched, metrics.NewServer(cfg.MetricsAddr, m.Handler(), logger), logger)
}

// runForever runs the scheduler alongside the metrics server until ctx
// is cancelled. A server failure, such as the bind address being taken,
// stops the scheduler too.
func runForever(ctx context.Context, sched *scheduler.Scheduler, server *metrics.Server, logger *zap.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		err := server.Run(runCtx)
		serverErr <- err
		if err != nil {
			cancel()
		}
	}()

	err := sched.Run(runCtx)
	cancel()
	if srvErr := <-serverErr; srvErr != nil {
		return fmt.Errorf("metrics server failed: %w", srvErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// resolveConfig layers defaults, the optional config file, and flags, in
// that order.
func resolveConfig(opts CheckOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.File != "" {
		loaded, err := loadConfigFile(opts.File)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Kubeconfig != "" {
		cfg.Kubeconfig = opts.Kubeconfig
	}
	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
	}
	if opts.Image != "" {
		cfg.Image = opts.Image
	}
	if opts.Interval != 0 {
		cfg.Interval = opts.Interval
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if opts.Once {
		cfg.Once = true
	}
	if opts.Debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitFor maps a one-shot cycle to a process exit code: 0 every pair
// tested, 1 some pairs could not be tested, 2 the cycle aborted.
func exitFor(cycle *check.Cycle) error {
	switch cycle.Status {
	case check.CycleCompleted:
		return nil
	case check.CyclePartiallyFailed:
		return &ExitError{Code: 1, Err: errors.New("some node pairs could not be tested")}
	default:
		return &ExitError{Code: 2, Err: fmt.Errorf("check cycle aborted: %w", cycle.Err)}
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
