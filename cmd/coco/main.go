package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"coco/internal/cli"
)

func main() {
	// Stop between targets on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
