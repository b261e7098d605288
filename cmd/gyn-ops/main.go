package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/growyourneed/platform/internal/config"
	"github.com/growyourneed/platform/internal/logging"
	"github.com/growyourneed/platform/internal/ops"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ops.NewRootCmd(cfg, logger).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("gyn-ops failed")
		stop()
		os.Exit(1)
	}
}
