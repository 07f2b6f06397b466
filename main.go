package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samzong/aicommit/cmd"
	"github.com/samzong/aicommit/internal/ui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		printer := ui.NewPrinter(os.Stdout, os.Stderr)
		if ctx.Err() != nil {
			printer.Errorf("\nOperation cancelled")
			os.Exit(130)
		}
		printer.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
