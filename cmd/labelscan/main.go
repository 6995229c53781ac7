package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/labelscan/cmd/labelscan/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
