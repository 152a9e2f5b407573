// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"fmt"

	"github.com/ManuGH/custd/internal/persistence/sqlite"
)

// sqliteMigrations bring the schema to version len(sqliteMigrations).
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name    VARCHAR(63)  NOT NULL,
		last_name     VARCHAR(63)  NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password      VARCHAR(63)  NOT NULL,
		address       VARCHAR(255) NOT NULL,
		status        VARCHAR(16)  NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended')),
		creation_date TEXT NOT NULL,
		last_updated  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);`,
}

// OpenSQLite opens (and if needed creates) the SQLite customer database.
func OpenSQLite(ctx context.Context, path string, cfg sqlite.Config) (*SQLStore, error) {
	db, err := sqlite.Open(ctx, path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := sqlite.Migrate(ctx, db, sqliteMigrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return newSQLStore(db, sqliteDialect), nil
}
