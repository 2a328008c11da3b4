package commands

import (
	"github.com/spf13/cobra"

	"github.com/remram44/kubernetes-network-checker/cmd/netcheck/handlers"
)

// Check returns the command running reachability check cycles.
//
// Optional flags:
//
//	--once: run a single cycle and exit with a status code
//	--config: kubeconfig path for out-of-cluster use
//	--file, -f: YAML configuration file
//
// Exit codes in --once mode: 0 every pair tested, 1 some pairs could not
// be tested, 2 the cycle aborted before testing.
func Check() *cobra.Command {
	var opts handlers.CheckOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run node-to-node reachability checks",
		Long: `Run node-to-node reachability checks.

Every schedulable node gets a probe pod and a matching service. Each
probe then curls every other probe's service, and the results are
printed as a matrix. Probes are always removed afterwards, whatever the
outcome.

Without --once the checker keeps running, repeating the cycle on an
interval and serving the latest results as Prometheus metrics.

Examples:
  # One cycle against the current kubeconfig context
  netcheck check --once --config ~/.kube/config

  # Continuous in-cluster checking in a dedicated namespace
  netcheck check --namespace netcheck

  # A custom probe image (anything serving HTTP on port 80)
  netcheck check --once --image nginx:1.27`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Check(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&opts.Kubeconfig, "config", "", "Path to kubeconfig (default: in-cluster)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "Namespace for probe pods and services (default: default)")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Probe pod image (default: nginx)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Time between cycle starts (default: 15m)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-bind-address", "", "Bind address for the metrics endpoint (default: :8080)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Run a single cycle and exit")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	return cmd
}
