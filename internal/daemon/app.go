// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"

	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/log"
)

// App ties the Manager to configuration reloads for the life of the
// process.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	service      *customer.Service
	reloadSignal os.Signal
}

// NewApp returns an App. A nil cfgHolder disables hot reload; a nil svc
// skips the cache TTL update.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, svc *customer.Service) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		service:      svc,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run serves until ctx is cancelled or the manager fails. With a config
// holder it also watches the file and reloads on the reload signal.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfgHolder != nil {
		// A failed watcher only disables file-triggered reloads.
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error { return a.reloadLoop(ctx, applyCh) })
	}
	g.Go(func() error { return a.serve(ctx) })
	return g.Wait()
}

// reloadLoop applies published configs and turns the reload signal into a
// holder reload, whose result arrives on applyCh.
func (a *App) reloadLoop(ctx context.Context, applyCh <-chan config.AppConfig) error {
	var sigCh chan os.Signal
	if a.reloadSignal != nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, a.reloadSignal)
		defer signal.Stop(sigCh)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-applyCh:
			a.apply(cfg)
		case sig := <-sigCh:
			a.logger.Info().
				Str("event", "config.reload_signal").
				Str("signal", sig.String()).
				Msg("received reload signal, reloading config")
			a.reload(ctx)
		}
	}
}

func (a *App) serve(ctx context.Context) error {
	err := a.manager.Start(ctx)
	if a.cfgHolder != nil {
		a.cfgHolder.Stop()
	}
	if err != nil {
		_ = a.manager.Shutdown(context.Background())
	}
	return err
}

func (a *App) reload(ctx context.Context) {
	if err := a.cfgHolder.Reload(ctx); err != nil {
		a.logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
	}
}

// apply pushes the hot-reloadable settings of cfg into the running process.
func (a *App) apply(cfg config.AppConfig) {
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("ignoring invalid log level")
	}
	if a.service != nil {
		a.service.SetCacheTTL(cfg.Cache.TTL)
	}
	a.logger.Info().
		Str("event", "config.applied").
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("applied reloaded config")
}
