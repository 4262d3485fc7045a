package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/r2dtools/certman/cmd/cli"
	"github.com/r2dtools/certman/config"
)

var Version string

func main() {
	config.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Create().ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
