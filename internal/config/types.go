// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads and validates custd configuration.
package config

import "time"

// Log output formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// AppConfig is the effective runtime configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version   string
	LogLevel  string
	LogFormat string // json or console
	DataDir   string

	API       APIConfig
	Metrics   MetricsConfig
	Server    ServerRuntimeConfig
	Store     StoreConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
}

// APIConfig controls the REST listener and its middleware stack.
type APIConfig struct {
	ListenAddr         string
	CORSOrigins        []string
	SecurityHeaders    bool
	RateLimitEnabled   bool
	RateLimitRPS       int
	RateLimitWhitelist []string
	MaxBodyBytes       int64
}

// MetricsConfig controls Prometheus exposition. With an empty ListenAddr the
// metrics are served on the API listener under /metrics.
type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

// ServerRuntimeConfig holds http.Server timeouts.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// StoreConfig selects the customer repository backend.
type StoreConfig struct {
	Backend string
	// Path is the sqlite file or badger directory. Empty resolves under DataDir.
	Path         string
	DSN          string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// CacheConfig controls the read-through customer cache.
type CacheConfig struct {
	Backend         string
	TTL             time.Duration
	CleanupInterval time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// FileConfig is the YAML document shape. Pointer fields distinguish an
// explicit false or zero from an absent key.
type FileConfig struct {
	LogLevel  string `yaml:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty"`
	DataDir   string `yaml:"dataDir,omitempty"`

	API       APIFileConfig       `yaml:"api,omitempty"`
	Metrics   MetricsFileConfig   `yaml:"metrics,omitempty"`
	Server    ServerFileConfig    `yaml:"server,omitempty"`
	Store     StoreFileConfig     `yaml:"store,omitempty"`
	Cache     CacheFileConfig     `yaml:"cache,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

type APIFileConfig struct {
	ListenAddr      string   `yaml:"listenAddr,omitempty"`
	CORSOrigins     []string `yaml:"corsOrigins,omitempty"`
	SecurityHeaders *bool    `yaml:"securityHeaders,omitempty"`
	MaxBodyBytes    *int64   `yaml:"maxBodyBytes,omitempty"`
	RateLimit       struct {
		Enabled   *bool    `yaml:"enabled,omitempty"`
		RPS       *int     `yaml:"rps,omitempty"`
		Whitelist []string `yaml:"whitelist,omitempty"`
	} `yaml:"rateLimit,omitempty"`
}

type MetricsFileConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

type ServerFileConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     time.Duration `yaml:"idleTimeout,omitempty"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

type StoreFileConfig struct {
	Backend      string        `yaml:"backend,omitempty"`
	Path         string        `yaml:"path,omitempty"`
	DSN          string        `yaml:"dsn,omitempty"`
	BusyTimeout  time.Duration `yaml:"busyTimeout,omitempty"`
	MaxOpenConns int           `yaml:"maxOpenConns,omitempty"`
}

type CacheFileConfig struct {
	Backend         string        `yaml:"backend,omitempty"`
	TTL             time.Duration `yaml:"ttl,omitempty"`
	CleanupInterval time.Duration `yaml:"cleanupInterval,omitempty"`
	KeyPrefix       string        `yaml:"keyPrefix,omitempty"`
	Redis           struct {
		Addr     string `yaml:"addr,omitempty"`
		Password string `yaml:"password,omitempty"`
		DB       *int   `yaml:"db,omitempty"`
	} `yaml:"redis,omitempty"`
}

type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}
