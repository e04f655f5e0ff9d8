package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/datazip-inc/bqsink/protocol"
	"github.com/datazip-inc/bqsink/utils/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := protocol.CreateRootCommand().ExecuteContext(ctx); err != nil {
		logger.Fatalf("command failed: %s", err)
	}
	os.Exit(0)
}
