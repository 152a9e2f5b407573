// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Field names a filterable customer column. The value doubles as the
// query parameter name and the table column name.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPassword  Field = "password"
	FieldAddress   Field = "address"
	FieldStatus    Field = "status"
)

// TextFields are matched as case-insensitive substrings, in this order.
var TextFields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldPassword, FieldAddress}

// Term is a single substring predicate on a text field.
type Term struct {
	Field Field
	Value string
}

// Filter is a conjunction of field predicates. The zero value matches
// every customer.
type Filter struct {
	Terms  []Term
	Status Status
}

// ParseFilter turns list query parameters into a Filter. Unknown
// parameters and unknown status values are rejected; empty values are
// ignored; repeated parameters use the first value.
func ParseFilter(q url.Values) (Filter, error) {
	var unknown []string
	for name := range q {
		if !isFilterParam(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Filter{}, &ValidationError{Msg: "Invalid query parameter(s): " + strings.Join(unknown, ", ")}
	}

	var f Filter
	for _, field := range TextFields {
		if v := q.Get(string(field)); v != "" {
			f.Terms = append(f.Terms, Term{Field: field, Value: v})
		}
	}
	if v := q.Get(string(FieldStatus)); v != "" {
		s, err := ParseStatus(v)
		if err != nil {
			return Filter{}, err
		}
		f.Status = s
	}
	return f, nil
}

func isFilterParam(name string) bool {
	if Field(name) == FieldStatus {
		return true
	}
	for _, f := range TextFields {
		if Field(name) == f {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return len(f.Terms) == 0 && f.Status == ""
}

// Fields returns the names of the fields the filter constrains.
func (f Filter) Fields() []string {
	out := make([]string, 0, len(f.Terms)+1)
	for _, t := range f.Terms {
		out = append(out, string(t.Field))
	}
	if f.Status != "" {
		out = append(out, string(FieldStatus))
	}
	return out
}

// Matches evaluates the filter against c in memory.
func (f Filter) Matches(c Customer) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	for _, t := range f.Terms {
		if !strings.Contains(Fold(c.Value(t.Field)), Fold(t.Value)) {
			return false
		}
	}
	return true
}

// Fold normalises s for case-insensitive comparison.
func Fold(s string) string {
	// Casers carry state and must not be shared between goroutines.
	return cases.Fold().String(norm.NFC.String(s))
}
