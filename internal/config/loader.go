// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/store"
	"github.com/ManuGH/custd/internal/telemetry"
)

const (
	defaultDataDir         = "/var/lib/custd"
	defaultListenAddr      = ":8080"
	defaultRateLimitRPS    = 100
	defaultMaxBodyBytes    = 1 << 20
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
	defaultCleanupInterval = time.Minute
	defaultOTelEndpoint    = "localhost:4317"
	sqliteFileName         = "customers.db"
	badgerDirName          = "badger"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every variable the loader looked at.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file the loader reads, or "" for ENV-only mode.
func (l *Loader) Path() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The merged result is validated before it is returned.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	if err := l.mergeEnvConfig(&cfg); err != nil {
		return cfg, err
	}

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	resolveStorePath(&cfg)
	if cfg.Server.ShutdownTimeout < minShutdownTimeout {
		cfg.Server.ShutdownTimeout = minShutdownTimeout
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:  "info",
		LogFormat: LogFormatJSON,
		DataDir:   defaultDataDir,
		API: APIConfig{
			ListenAddr:       defaultListenAddr,
			SecurityHeaders:  true,
			RateLimitEnabled: true,
			RateLimitRPS:     defaultRateLimitRPS,
			MaxBodyBytes:     defaultMaxBodyBytes,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Server: ServerRuntimeConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Store: StoreConfig{
			Backend:      store.BackendSQLite,
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 25,
		},
		Cache: CacheConfig{
			Backend:         cache.BackendMemory,
			TTL:             customer.DefaultCacheTTL,
			CleanupInterval: defaultCleanupInterval,
		},
		Telemetry: TelemetryConfig{
			Exporter:     telemetry.ExporterGRPC,
			Endpoint:     defaultOTelEndpoint,
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a YAML document strictly.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

// LoadFileConfig loads a YAML config file without applying defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) {
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.LogFormat, f.LogFormat)
	setString(&cfg.DataDir, f.DataDir)

	setString(&cfg.API.ListenAddr, f.API.ListenAddr)
	if len(f.API.CORSOrigins) > 0 {
		cfg.API.CORSOrigins = f.API.CORSOrigins
	}
	setPtr(&cfg.API.SecurityHeaders, f.API.SecurityHeaders)
	setPtr(&cfg.API.MaxBodyBytes, f.API.MaxBodyBytes)
	setPtr(&cfg.API.RateLimitEnabled, f.API.RateLimit.Enabled)
	setPtr(&cfg.API.RateLimitRPS, f.API.RateLimit.RPS)
	if len(f.API.RateLimit.Whitelist) > 0 {
		cfg.API.RateLimitWhitelist = f.API.RateLimit.Whitelist
	}

	setPtr(&cfg.Metrics.Enabled, f.Metrics.Enabled)
	setString(&cfg.Metrics.ListenAddr, f.Metrics.ListenAddr)

	setPositive(&cfg.Server.ReadTimeout, f.Server.ReadTimeout)
	setPositive(&cfg.Server.WriteTimeout, f.Server.WriteTimeout)
	setPositive(&cfg.Server.IdleTimeout, f.Server.IdleTimeout)
	setPositive(&cfg.Server.MaxHeaderBytes, f.Server.MaxHeaderBytes)
	setPositive(&cfg.Server.ShutdownTimeout, f.Server.ShutdownTimeout)

	setString(&cfg.Store.Backend, f.Store.Backend)
	setString(&cfg.Store.Path, f.Store.Path)
	setString(&cfg.Store.DSN, f.Store.DSN)
	setPositive(&cfg.Store.BusyTimeout, f.Store.BusyTimeout)
	setPositive(&cfg.Store.MaxOpenConns, f.Store.MaxOpenConns)

	setString(&cfg.Cache.Backend, f.Cache.Backend)
	setPositive(&cfg.Cache.TTL, f.Cache.TTL)
	setPositive(&cfg.Cache.CleanupInterval, f.Cache.CleanupInterval)
	setString(&cfg.Cache.KeyPrefix, f.Cache.KeyPrefix)
	setString(&cfg.Cache.RedisAddr, f.Cache.Redis.Addr)
	setString(&cfg.Cache.RedisPassword, f.Cache.Redis.Password)
	setPtr(&cfg.Cache.RedisDB, f.Cache.Redis.DB)

	setPtr(&cfg.Telemetry.Enabled, f.Telemetry.Enabled)
	setString(&cfg.Telemetry.Exporter, f.Telemetry.Exporter)
	setString(&cfg.Telemetry.Endpoint, f.Telemetry.Endpoint)
	setPtr(&cfg.Telemetry.SamplingRate, f.Telemetry.SamplingRate)
	setString(&cfg.Telemetry.Environment, f.Telemetry.Environment)
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) error {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = l.envString(EnvLogFormat, cfg.LogFormat)
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)

	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.CORSOrigins = l.envList(EnvCORSOrigins, cfg.API.CORSOrigins)
	cfg.API.SecurityHeaders = l.envBool(EnvSecurityHeaders, cfg.API.SecurityHeaders)
	cfg.API.RateLimitEnabled = l.envBool(EnvRateLimitEnabled, cfg.API.RateLimitEnabled)
	cfg.API.RateLimitRPS = l.envInt(EnvRateLimitRPS, cfg.API.RateLimitRPS)
	cfg.API.RateLimitWhitelist = l.envList(EnvRateLimitWhitelist, cfg.API.RateLimitWhitelist)
	cfg.API.MaxBodyBytes = l.envInt64(EnvMaxBodyBytes, cfg.API.MaxBodyBytes)

	cfg.Metrics.Enabled = l.envBool(EnvMetricsEnabled, cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsListen, cfg.Metrics.ListenAddr)

	cfg.Server.ReadTimeout = l.envDuration(EnvServerReadTimeout, cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(EnvServerWriteTimeout, cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration(EnvServerIdleTimeout, cfg.Server.IdleTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt(EnvServerMaxHeaderBytes, cfg.Server.MaxHeaderBytes)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvServerShutdownTimeout, cfg.Server.ShutdownTimeout)

	cfg.Store.Backend = l.envString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Store.Path = l.envString(EnvStorePath, cfg.Store.Path)
	dsn, err := l.resolveDSN(cfg.Store.DSN)
	if err != nil {
		return err
	}
	cfg.Store.DSN = dsn
	cfg.Store.BusyTimeout = l.envDuration(EnvStoreBusyTimeout, cfg.Store.BusyTimeout)
	cfg.Store.MaxOpenConns = l.envInt(EnvStoreMaxOpenConns, cfg.Store.MaxOpenConns)

	cfg.Cache.Backend = l.envString(EnvCacheBackend, cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)
	cfg.Cache.CleanupInterval = l.envDuration(EnvCacheCleanupInterval, cfg.Cache.CleanupInterval)
	cfg.Cache.KeyPrefix = l.envString(EnvCacheKeyPrefix, cfg.Cache.KeyPrefix)
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt(EnvRedisDB, cfg.Cache.RedisDB)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSamplingRate, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvOTelEnvironment, cfg.Telemetry.Environment)
	return nil
}

// resolveDSN applies CUSTD_STORE_DSN and its DATABASE_URI alias. Setting
// both to different values is an error.
func (l *Loader) resolveDSN(current string) (string, error) {
	canonical := l.envString(EnvStoreDSN, "")
	alias := l.envString(EnvDatabaseURI, "")
	switch {
	case canonical != "" && alias != "" && canonical != alias:
		return "", fmt.Errorf("%w: %s and %s differ", ErrAliasConflict, EnvStoreDSN, EnvDatabaseURI)
	case canonical != "":
		return canonical, nil
	case alias != "":
		return alias, nil
	}
	return current, nil
}

// resolveStorePath places file backed stores under DataDir unless a path
// is configured.
func resolveStorePath(cfg *AppConfig) {
	if cfg.Store.Path != "" {
		return
	}
	switch cfg.Store.Backend {
	case store.BackendSQLite:
		cfg.Store.Path = filepath.Join(cfg.DataDir, sqliteFileName)
	case store.BackendBadger:
		cfg.Store.Path = filepath.Join(cfg.DataDir, badgerDirName)
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPositive[T int | int64 | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
