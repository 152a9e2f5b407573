// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"fmt"
	"strings"

	"github.com/ManuGH/custd/internal/customer"
)

const customerColumns = "id, first_name, last_name, email, password, address, status, creation_date, last_updated"

// filterColumns whitelists the columns a filter may reference. Column names
// are never taken from request input directly.
var filterColumns = map[customer.Field]string{
	customer.FieldFirstName: "first_name",
	customer.FieldLastName:  "last_name",
	customer.FieldEmail:     "email",
	customer.FieldPassword:  "password",
	customer.FieldAddress:   "address",
}

// escapeLike makes %, _ and \ match literally under ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildListQuery renders the SELECT for f. Text predicates use the
// dialect's case-insensitive LIKE; status is an exact match.
func buildListQuery(d dialect, f customer.Filter) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	for _, t := range f.Terms {
		col, ok := filterColumns[t.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", t.Field)
		}
		args = append(args, "%"+escapeLike(t.Value)+"%")
		where = append(where, d.textMatch(col, d.placeholder(len(args))))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = "+d.placeholder(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + customerColumns + " FROM customers")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY id ASC")
	return b.String(), args, nil
}
