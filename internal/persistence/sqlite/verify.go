// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Integrity check modes accepted by VerifyIntegrity.
const (
	ModeQuick = "quick"
	ModeFull  = "full"
)

var checkPragmas = map[string]string{
	ModeQuick: "PRAGMA quick_check",
	ModeFull:  "PRAGMA integrity_check",
}

// Report is the outcome of VerifyIntegrity. Healthy databases have no
// issues.
type Report struct {
	SchemaVersion int
	Issues        []string
}

// Healthy reports whether the check found nothing.
func (r Report) Healthy() bool { return len(r.Issues) == 0 }

// VerifyIntegrity opens path read-only and runs the SQLite consistency
// check selected by mode.
func VerifyIntegrity(ctx context.Context, path, mode string) (Report, error) {
	pragma, ok := checkPragmas[mode]
	if !ok {
		return Report{}, fmt.Errorf("sqlite: unknown verify mode %q", mode)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(2000)", path))
	if err != nil {
		return Report{}, fmt.Errorf("sqlite: open %s read-only: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	var rep Report
	if rep.SchemaVersion, err = SchemaVersion(ctx, db); err != nil {
		return Report{}, err
	}

	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return Report{}, fmt.Errorf("sqlite: %s: %w", pragma, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return Report{}, fmt.Errorf("sqlite: scan %s row: %w", mode, err)
		}
		if !strings.EqualFold(line, "ok") {
			rep.Issues = append(rep.Issues, line)
		}
	}
	if err := rows.Err(); err != nil {
		return Report{}, fmt.Errorf("sqlite: %s: %w", pragma, err)
	}
	return rep, nil
}
