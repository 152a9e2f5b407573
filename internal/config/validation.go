// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"strings"

	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/store"
	"github.com/ManuGH/custd/internal/telemetry"
	"github.com/ManuGH/custd/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package.
// File backed stores get their parent directory created when missing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("logLevel", cfg.LogLevel)
	v.OneOf("logFormat", cfg.LogFormat, []string{LogFormatJSON, LogFormatConsole})

	// API
	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.maxBodyBytes", cfg.API.MaxBodyBytes)
	if cfg.API.RateLimitEnabled {
		v.Range("api.rateLimit.rps", cfg.API.RateLimitRPS, 1, 1_000_000)
	}
	v.IPOrCIDR("api.rateLimit.whitelist", cfg.API.RateLimitWhitelist)

	// Metrics
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddr != "" {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.API.ListenAddr {
			v.AddError("metrics.listenAddr", "must differ from api.listenAddr", cfg.Metrics.ListenAddr)
		}
	}

	// Store
	v.OneOf("store.backend", cfg.Store.Backend, store.Backends)
	switch cfg.Store.Backend {
	case store.BackendSQLite, store.BackendBadger:
		if strings.TrimSpace(cfg.Store.Path) == "" {
			v.AddError("store.path", "path cannot be empty for file backed stores", cfg.Store.Path)
		} else {
			v.Directory("store.path", filepath.Dir(cfg.Store.Path), false)
		}
	case store.BackendPostgres:
		if strings.Contains(cfg.Store.DSN, "://") {
			v.URL("store.dsn", cfg.Store.DSN, []string{"postgres", "postgresql"})
		} else {
			v.NotEmpty("store.dsn", cfg.Store.DSN)
		}
	}
	v.Range("store.maxOpenConns", cfg.Store.MaxOpenConns, 1, 1000)

	// Cache
	v.OneOf("cache.backend", cfg.Cache.Backend, []string{cache.BackendNone, cache.BackendMemory, cache.BackendRedis})
	if cfg.Cache.Backend == cache.BackendRedis {
		v.ListenAddr("cache.redis.addr", cfg.Cache.RedisAddr)
		v.Range("cache.redis.db", cfg.Cache.RedisDB, 0, 15)
	}
	if cfg.Cache.Backend != cache.BackendNone && cfg.Cache.TTL <= 0 {
		v.AddError("cache.ttl", "must be positive when caching is enabled", cfg.Cache.TTL)
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{telemetry.ExporterGRPC, telemetry.ExporterHTTP})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.Fraction("telemetry.samplingRate", cfg.Telemetry.SamplingRate)
	}

	return v.Err()
}
