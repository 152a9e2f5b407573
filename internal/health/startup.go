// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/store"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment and dependencies before starting the server.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponentFromContext(ctx, "startup-check")
	logger.Info().Msg("Running pre-flight startup checks")

	switch cfg.Store.Backend {
	case store.BackendSQLite, store.BackendBadger:
		dir := cfg.Store.Path
		if cfg.Store.Backend == store.BackendSQLite {
			dir = filepath.Dir(dir)
		}
		if err := checkWritableDir(logger, dir); err != nil {
			return fmt.Errorf("store directory check failed: %w", err)
		}
	case store.BackendPostgres:
		if err := checkDSN(cfg.Store.DSN); err != nil {
			return fmt.Errorf("store dsn check failed: %w", err)
		}
		logger.Info().Msg("Postgres DSN is well-formed")
	case store.BackendMemory:
		logger.Warn().Msg("memory store in use; customers are lost on restart")
	}

	if cfg.Cache.Backend == cache.BackendRedis {
		if _, _, err := net.SplitHostPort(cfg.Cache.RedisAddr); err != nil {
			return fmt.Errorf("invalid redis address %q: %w", cfg.Cache.RedisAddr, err)
		}
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; customer data may be lost on reboot")
	}

	logger.Info().Msg("All startup checks passed")
	return nil
}

// checkWritableDir creates path if needed and probes it with a temp file.
func checkWritableDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	f, err := os.CreateTemp(path, ".write_test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	logger.Info().Str("path", path).Msg("Store directory is writable")
	return nil
}

// checkDSN accepts URL-style (postgres://) and keyword/value connection strings.
func checkDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("empty dsn")
	}
	if !strings.Contains(dsn, "://") {
		if !strings.Contains(dsn, "=") {
			return fmt.Errorf("dsn is neither a URL nor key=value pairs")
		}
		return nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("dsn scheme must be postgres or postgresql, got: %s", u.Scheme)
	}
	return nil
}
