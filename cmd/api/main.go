package main

import (
	"fmt"
	"os"

	"apareport/internal/api"
	"apareport/internal/config"
	"apareport/internal/container"
	"apareport/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}
	defer c.Close()

	server := api.NewServer(c.AnovaService, c.ComparisonService, logger.Named("api"))
	if err := server.Start(cfg.Server.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
