// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/daemon"
	"github.com/ManuGH/custd/internal/health"
	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	// Safe defaults until the config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: daemon.ServiceName,
		Version: version.Version,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, loader, err := loadConfig(opts)
	if err != nil {
		logger := log.WithComponent("daemon")
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Msg("failed to load configuration")
		return err
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: daemon.ServiceName,
		Version: cfg.Version,
		Console: cfg.LogFormat == config.LogFormatConsole,
	})
	logger := log.WithComponent("daemon")

	if path := loader.Path(); path != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", path).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("Startup checks failed. Please verify configuration and permissions.")
		return err
	}

	rt, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	serverCfg := config.ServerConfigFor(cfg)
	mgr, err := daemon.NewManager(serverCfg, rt.ManagerDeps())
	if err != nil {
		_ = rt.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("create daemon manager: %w", err)
	}
	rt.RegisterShutdownHooks(mgr)

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Str("store", cfg.Store.Backend).
		Str("store_path", cfg.Store.Path).
		Str("store_dsn", maskURL(cfg.Store.DSN)).
		Str("cache", cfg.Cache.Backend).
		Msg("starting custd")

	app := daemon.NewApp(logger, mgr, config.NewConfigHolder(cfg, loader), rt.Service)
	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
		return err
	}

	logger.Info().Msg("server exiting")
	return nil
}
