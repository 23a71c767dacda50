package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/kandji-inc/kpkg/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cli.Execute(ctx)
}
