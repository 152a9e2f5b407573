// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// ToFileConfig maps cfg back to the YAML document shape. Secrets are
// written only when set.
func ToFileConfig(cfg AppConfig) FileConfig {
	fc := FileConfig{
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		DataDir:   cfg.DataDir,
	}

	fc.API.ListenAddr = cfg.API.ListenAddr
	fc.API.CORSOrigins = cfg.API.CORSOrigins
	fc.API.SecurityHeaders = ptr(cfg.API.SecurityHeaders)
	fc.API.MaxBodyBytes = ptr(cfg.API.MaxBodyBytes)
	fc.API.RateLimit.Enabled = ptr(cfg.API.RateLimitEnabled)
	fc.API.RateLimit.RPS = ptr(cfg.API.RateLimitRPS)
	fc.API.RateLimit.Whitelist = cfg.API.RateLimitWhitelist

	fc.Metrics.Enabled = ptr(cfg.Metrics.Enabled)
	fc.Metrics.ListenAddr = cfg.Metrics.ListenAddr

	fc.Server = ServerFileConfig(cfg.Server)

	fc.Store = StoreFileConfig{
		Backend:      cfg.Store.Backend,
		Path:         cfg.Store.Path,
		DSN:          cfg.Store.DSN,
		BusyTimeout:  cfg.Store.BusyTimeout,
		MaxOpenConns: cfg.Store.MaxOpenConns,
	}

	fc.Cache.Backend = cfg.Cache.Backend
	fc.Cache.TTL = cfg.Cache.TTL
	fc.Cache.CleanupInterval = cfg.Cache.CleanupInterval
	fc.Cache.KeyPrefix = cfg.Cache.KeyPrefix
	fc.Cache.Redis.Addr = cfg.Cache.RedisAddr
	fc.Cache.Redis.Password = cfg.Cache.RedisPassword
	if cfg.Cache.RedisDB != 0 {
		fc.Cache.Redis.DB = ptr(cfg.Cache.RedisDB)
	}

	fc.Telemetry = TelemetryFileConfig{
		Enabled:      ptr(cfg.Telemetry.Enabled),
		Exporter:     cfg.Telemetry.Exporter,
		Endpoint:     cfg.Telemetry.Endpoint,
		SamplingRate: ptr(cfg.Telemetry.SamplingRate),
		Environment:  cfg.Telemetry.Environment,
	}
	return fc
}

// Save writes fc to path atomically. Readers never observe a partial file.
func Save(path string, fc FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultConfigPath returns config.yaml inside the data directory taken
// from CUSTD_DATA_DIR or the built-in default.
func DefaultConfigPath() string {
	dataDir := ParseString(EnvDataDir, defaultDataDir)
	return filepath.Join(dataDir, "config.yaml")
}

// ResolveConfigPath picks the file to load: explicit wins, then
// CUSTD_CONFIG, then DefaultConfigPath when that file exists. An empty
// result means ENV and defaults only.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := ParseString(EnvConfigFile, ""); p != "" {
		return p
	}
	if p := DefaultConfigPath(); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func ptr[T any](v T) *T { return &v }
