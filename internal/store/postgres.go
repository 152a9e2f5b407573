// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS customers (
	id            BIGSERIAL PRIMARY KEY,
	first_name    VARCHAR(63)  NOT NULL,
	last_name     VARCHAR(63)  NOT NULL,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password      VARCHAR(63)  NOT NULL,
	address       VARCHAR(255) NOT NULL,
	status        VARCHAR(16)  NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended')),
	creation_date TIMESTAMPTZ  NOT NULL,
	last_updated  TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);`

// OpenPostgres connects to PostgreSQL and bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", ErrOpen)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpen, err)
	}
	if err := bootstrap(ctx, db, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, postgresDialect), nil
}

func bootstrap(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrOpen, err)
	}
	return nil
}
