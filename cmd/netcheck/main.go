// Package main is the entry point for the netcheck CLI.
//
// netcheck tests pairwise network reachability between the nodes of a
// Kubernetes cluster. It places a probe pod on every node, fronts each
// with a service, then execs into every pod to curl every other node's
// service, producing a full reachability matrix.
//
// It runs continuously on an interval by default, exposing the latest
// matrix as Prometheus metrics, or once with --once for use from CI or
// a shell.
//
// For detailed usage information, run:
//
//	netcheck --help
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/remram44/kubernetes-network-checker/cmd/netcheck/commands"
	"github.com/remram44/kubernetes-network-checker/cmd/netcheck/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		var exitErr *handlers.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
