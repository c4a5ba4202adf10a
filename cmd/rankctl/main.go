package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rankscope/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		os.Stderr.WriteString("rankctl: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
