// Command stepctl inspects the step catalogs published by stepflow
// workflows.
//
//	stepctl workflows
//	stepctl steps checkout
//	stepctl export checkout --format json
//	stepctl import checkout.yaml
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
