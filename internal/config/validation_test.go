// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/custd/internal/validate"
)

func validConfig(t *testing.T) AppConfig {
	t.Helper()
	cfg := Defaults()
	cfg.DataDir = t.TempDir()
	cfg.Store.Path = filepath.Join(cfg.DataDir, "customers.db")
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*AppConfig)
		wantField string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, "logLevel"},
		{"bad log format", func(c *AppConfig) { c.LogFormat = "xml" }, "logFormat"},
		{"console log format", func(c *AppConfig) { c.LogFormat = LogFormatConsole }, ""},
		{"bad listen", func(c *AppConfig) { c.API.ListenAddr = "8080" }, "api.listenAddr"},
		{"zero rps", func(c *AppConfig) { c.API.RateLimitRPS = 0 }, "api.rateLimit.rps"},
		{"zero rps when disabled", func(c *AppConfig) { c.API.RateLimitEnabled = false; c.API.RateLimitRPS = 0 }, ""},
		{"bad whitelist", func(c *AppConfig) { c.API.RateLimitWhitelist = []string{"nope"} }, "api.rateLimit.whitelist"},
		{"metrics on api port", func(c *AppConfig) { c.Metrics.ListenAddr = c.API.ListenAddr }, "metrics.listenAddr"},
		{"unknown backend", func(c *AppConfig) { c.Store.Backend = "mysql" }, "store.backend"},
		{"sqlite without path", func(c *AppConfig) { c.Store.Path = "" }, "store.path"},
		{"postgres without dsn", func(c *AppConfig) { c.Store.Backend = "postgres" }, "store.dsn"},
		{"postgres wrong scheme", func(c *AppConfig) { c.Store.Backend = "postgres"; c.Store.DSN = "mysql://db/customers" }, "store.dsn"},
		{"postgres keyword dsn", func(c *AppConfig) { c.Store.Backend = "postgres"; c.Store.DSN = "host=db dbname=customers" }, ""},
		{"memory store", func(c *AppConfig) { c.Store.Backend = "memory"; c.Store.Path = "" }, ""},
		{"unknown cache", func(c *AppConfig) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *AppConfig) { c.Cache.Backend = "redis" }, "cache.redis.addr"},
		{"redis", func(c *AppConfig) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "localhost:6379" }, ""},
		{"zero ttl", func(c *AppConfig) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"zero ttl without cache", func(c *AppConfig) { c.Cache.Backend = "none"; c.Cache.TTL = 0 }, ""},
		{"bad exporter", func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.Exporter = "zipkin" }, "telemetry.exporter"},
		{"bad sampling", func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.SamplingRate = 2 }, "telemetry.samplingRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr))
			var fields []string
			for _, e := range verr.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}
