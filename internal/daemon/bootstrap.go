// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/custd/internal/api"
	"github.com/ManuGH/custd/internal/api/middleware"
	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/health"
	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/metrics"
	"github.com/ManuGH/custd/internal/persistence/sqlite"
	"github.com/ManuGH/custd/internal/store"
	"github.com/ManuGH/custd/internal/telemetry"
)

// ServiceName is reported to tracing and logs.
const ServiceName = "custd"

// Runtime bundles the components built from one AppConfig.
type Runtime struct {
	Config    config.AppConfig
	Repo      customer.Repository
	Cache     cache.Cache
	Service   *customer.Service
	Health    *health.Manager
	API       *api.Server
	Telemetry *telemetry.Provider
}

// Bootstrap opens the store and cache, builds the service and the HTTP API,
// and installs the tracer provider. On error everything already opened is
// closed again.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (rt *Runtime, err error) {
	logger := log.WithComponent("daemon")
	rt = &Runtime{Config: cfg}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	if _, err = api.LoadOpenAPI(ctx); err != nil {
		return rt, fmt.Errorf("embedded api description: %w", err)
	}

	rt.Telemetry, err = telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return rt, fmt.Errorf("telemetry: %w", err)
	}

	rt.Repo, err = store.Open(ctx, StoreConfig(cfg))
	if err != nil {
		return rt, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	rt.Cache, err = cache.New(cache.Config{
		Backend:         cfg.Cache.Backend,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Redis: cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		},
	}, log.WithComponent("cache"))
	if err != nil {
		return rt, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}

	rt.Service = customer.NewService(rt.Repo, customer.WithCache(rt.Cache, cfg.Cache.TTL))

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewPingChecker("store", 0, rt.Repo.Ping))
	if cfg.Cache.Backend != cache.BackendNone {
		rt.Health.RegisterChecker(health.NewPingChecker("cache", 0, rt.Cache.HealthCheck).Optional())
	}

	rt.API = api.New(rt.Service, rt.Health, APIConfig(cfg))
	metrics.SetBuildInfo(cfg.Version, cfg.Store.Backend)

	logger.Info().
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Bool("telemetry", cfg.Telemetry.Enabled).
		Msg("runtime bootstrapped")
	return rt, nil
}

// StoreConfig maps the store section onto store.Config.
func StoreConfig(cfg config.AppConfig) store.Config {
	sc := sqlite.DefaultConfig()
	if cfg.Store.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.Store.BusyTimeout
	}
	if cfg.Store.MaxOpenConns > 0 {
		sc.MaxOpenConns = cfg.Store.MaxOpenConns
	}
	return store.Config{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		DSN:     cfg.Store.DSN,
		SQLite:  sc,
	}
}

// APIConfig maps the api, metrics and telemetry sections onto api.Config.
func APIConfig(cfg config.AppConfig) api.Config {
	tracing := ""
	if cfg.Telemetry.Enabled {
		tracing = ServiceName
	}
	return api.Config{
		Stack: middleware.StackConfig{
			EnableCORS:            len(cfg.API.CORSOrigins) > 0,
			AllowedOrigins:        cfg.API.CORSOrigins,
			EnableSecurityHeaders: cfg.API.SecurityHeaders,
			EnableMetrics:         cfg.Metrics.Enabled,
			TracingService:        tracing,
			EnableLogging:         true,
			EnableRateLimit:       cfg.API.RateLimitEnabled,
			RateLimitRPS:          cfg.API.RateLimitRPS,
			RateLimitWhitelist:    cfg.API.RateLimitWhitelist,
		},
		MetricsEndpoint: cfg.Metrics.Enabled && config.MetricsAddr(cfg) == "",
		MaxBodyBytes:    cfg.API.MaxBodyBytes,
	}
}

// ManagerDeps returns the Deps for serving rt.
func (rt *Runtime) ManagerDeps() Deps {
	deps := Deps{
		Logger:     log.WithComponent("daemon"),
		APIHandler: rt.API.Handler(),
	}
	if addr := config.MetricsAddr(rt.Config); addr != "" {
		deps.MetricsAddr = addr
		deps.MetricsHandler = promhttp.Handler()
	}
	return deps
}

// RegisterShutdownHooks hands ownership of the opened resources to m.
// Registration order mirrors Bootstrap so LIFO closes cache, then store,
// then telemetry.
func (rt *Runtime) RegisterShutdownHooks(m Manager) {
	if rt.Telemetry != nil {
		m.RegisterShutdownHook("telemetry", rt.Telemetry.Shutdown)
	}
	if rt.Repo != nil {
		m.RegisterShutdownHook("store", func(context.Context) error { return rt.Repo.Close() })
	}
	if rt.Cache != nil {
		m.RegisterShutdownHook("cache", func(context.Context) error { return rt.Cache.Close() })
	}
}

// Close releases everything Bootstrap opened. It is used on paths where no
// Manager owns the runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Cache != nil {
		errs = append(errs, rt.Cache.Close())
	}
	if rt.Repo != nil {
		errs = append(errs, rt.Repo.Close())
	}
	if rt.Telemetry != nil {
		errs = append(errs, rt.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
