// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store provides the customer repository backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/persistence/sqlite"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Backends lists every supported backend.
var Backends = []string{BackendSQLite, BackendPostgres, BackendBadger, BackendMemory}

// ErrOpen wraps failures to open or bootstrap a backend.
var ErrOpen = errors.New("store: open failed")

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the database file (sqlite) or directory (badger).
	Path string
	// DSN is the connection string for postgres.
	DSN    string
	SQLite sqlite.Config
}

// Open creates a customer.Repository based on the backend configuration.
func Open(ctx context.Context, cfg Config) (customer.Repository, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendSQLite
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		sc := cfg.SQLite
		if sc == (sqlite.Config{}) {
			sc = sqlite.DefaultConfig()
		}
		return asRepository(OpenSQLite(ctx, cfg.Path, sc))
	case BackendPostgres:
		return asRepository(OpenPostgres(ctx, cfg.DSN))
	case BackendBadger:
		return asRepository(OpenBadgerStore(cfg.Path))
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// asRepository avoids returning a typed nil inside a non-nil interface.
func asRepository[T customer.Repository](r T, err error) (customer.Repository, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
