// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"database/sql/driver"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ManuGH/custd/internal/customer"
)

// foldFunc is registered on every SQLite connection so text filters fold
// the same way the in-memory stores do.
const foldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return customer.Fold(v), nil
		case []byte:
			return customer.Fold(string(v)), nil
		default:
			return v, nil
		}
	})
}

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	name              string
	like              string
	fold              string
	placeholder       func(n int) string
	timeArg           func(t time.Time) any
	isUniqueViolation func(err error) bool
}

var sqliteDialect = dialect{
	name: BackendSQLite,
	// Built-in LIKE folds ASCII only, so both sides go through foldFunc.
	like:        "LIKE",
	fold:        foldFunc,
	placeholder: func(int) string { return "?" },
	// Timestamps are stored as RFC 3339 text.
	timeArg: func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
	isUniqueViolation: func(err error) bool {
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return false
		}
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	},
}

var postgresDialect = dialect{
	name:        BackendPostgres,
	like:        "ILIKE",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	timeArg:     func(t time.Time) any { return t.UTC() },
	isUniqueViolation: func(err error) bool {
		var pe *pgconn.PgError
		return errors.As(err, &pe) && pe.Code == "23505"
	},
}

// textMatch renders a case-insensitive substring predicate on col.
func (d dialect) textMatch(col, placeholder string) string {
	if d.fold != "" {
		col = d.fold + "(" + col + ")"
		placeholder = d.fold + "(" + placeholder + ")"
	}
	return col + " " + d.like + " " + placeholder + ` ESCAPE '\'`
}

// bind renders the placeholders 1..n for d.
func (d dialect) bind(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = d.placeholder(i + 1)
	}
	return out
}
