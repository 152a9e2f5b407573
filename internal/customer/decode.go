// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// emailPattern accepts Unicode letters and digits in the local part and in
// domain labels; the top-level domain must be at least two ASCII letters.
var emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_.+\-]+@(?:[\p{L}\p{N}_\-]+\.)+[a-zA-Z]{2,}$`)

// ValidEmail reports whether email has an acceptable format.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateEmail returns a ValidationError for a malformed email.
func ValidateEmail(email string) error {
	if !ValidEmail(email) {
		return &ValidationError{Msg: fmt.Sprintf("Invalid email format: '%s'", email)}
	}
	return nil
}

type requiredField struct {
	name  string
	limit int
	set   func(*Customer, string)
}

// requiredFields is checked in order; the first failure is reported.
var requiredFields = []requiredField{
	{"first_name", MaxNameLen, func(c *Customer, v string) { c.FirstName = v }},
	{"last_name", MaxNameLen, func(c *Customer, v string) { c.LastName = v }},
	{"email", MaxEmailLen, func(c *Customer, v string) { c.Email = v }},
	{"password", MaxPasswordLen, func(c *Customer, v string) { c.Password = v }},
	{"address", MaxAddressLen, func(c *Customer, v string) { c.Address = v }},
}

var errTrailingData = errors.New("unexpected data after the top-level value")

// DecodeJSON decodes body into v. Anything but whitespace after the first
// value is an error.
func DecodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// Decode parses a JSON request body into a Customer.
// Server-owned fields (id, creation_date, last_updated) are ignored.
func Decode(body []byte) (Customer, error) {
	var raw any
	if err := DecodeJSON(body, &raw); err != nil {
		return Customer{}, &ValidationError{Msg: fmt.Sprintf("Invalid JSON body: %v", err), Err: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Customer{}, &ValidationError{Msg: "Invalid input data"}
	}
	return FromMap(obj)
}

// FromMap builds a Customer from an already decoded JSON object.
func FromMap(data map[string]any) (Customer, error) {
	var c Customer
	for _, f := range requiredFields {
		v, present := data[f.name]
		if !present || v == nil {
			return Customer{}, &ValidationError{Msg: "Invalid Customer: missing " + f.name}
		}
		s, ok := v.(string)
		if !ok {
			return Customer{}, &ValidationError{Msg: fmt.Sprintf("Invalid input data: %s must be a string", f.name)}
		}
		if utf8.RuneCountInString(s) > f.limit {
			return Customer{}, &ValidationError{Msg: fmt.Sprintf("Invalid Customer: %s exceeds %d characters", f.name, f.limit)}
		}
		f.set(&c, s)
	}

	if err := ValidateEmail(c.Email); err != nil {
		return Customer{}, err
	}

	if v, present := data["status"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return Customer{}, &ValidationError{Msg: "Invalid input data: status must be a string"}
		}
		status, err := ParseStatus(s)
		if err != nil {
			return Customer{}, err
		}
		c.Status = status
	}

	return c, nil
}
