// Command replctl is the operator CLI for the replenishment service. It runs
// the same use cases as the HTTP API directly against the database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := handleError(rootCmd, err)
		stop()
		os.Exit(code)
	}
}
