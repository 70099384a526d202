// Package main runs the dice server: the telnet console and the HTTP API
// over one shared roll log.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/api"
	"github.com/cory-johannsen/dicetool/internal/config"
	"github.com/cory-johannsen/dicetool/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/game/command"
	"github.com/cory-johannsen/dicetool/internal/observability"
	"github.com/cory-johannsen/dicetool/internal/server"
	"github.com/cory-johannsen/dicetool/internal/tabletop"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting dice server",
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage", cfg.Storage.Backend),
	)

	ctx := context.Background()
	svc, closeStore, err := tabletop.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building roll service", zap.Error(err))
	}
	defer closeStore()

	lifecycle := server.NewLifecycle(logger, cfg.HTTP.ShutdownTimeout)

	if cfg.Telnet.Enabled {
		console := handlers.NewConsole(svc, command.DefaultRegistry(), cfg.Server.Name, logger)
		lifecycle.Add("telnet", telnet.NewAcceptor(cfg.Telnet, console, logger))
	}
	if cfg.HTTP.Enabled {
		router := api.NewRouter(svc, cfg.HTTP, logger)
		lifecycle.Add("http", api.NewServer(cfg.HTTP, router, logger))
	}

	logger.Info("dice server initialized",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server exited with error", zap.Error(err))
	}
}
