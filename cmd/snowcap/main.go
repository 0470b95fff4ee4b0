// Command snowcap synthesizes safe orderings of atomic network
// reconfiguration commands: run finds one valid ordering, optimize finds
// the lowest-soft-cost one within a budget, check replays a fixed ordering
// looking for transient policy violations, and serve runs optimize as a
// long-lived process with a status/metrics endpoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(2)
	}
}
