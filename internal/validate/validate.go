// SPDX-License-Identifier: MIT

// Package validate collects every field error of a configuration before
// reporting, so operators fix a file in one pass.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/netip"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Error is a single failed rule.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError is the combined result of a Validator.
type ValidationError struct {
	errors []Error
}

// Errors returns the failed rules in the order they were checked.
func (e ValidationError) Errors() []Error { return e.errors }

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.errors))
	for _, fe := range e.errors {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates rule failures. The zero value is ready to use.
type Validator struct {
	errors []Error
}

func New() *Validator { return &Validator{} }

// AddError records a failure for field unconditionally.
func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

// Check records a failure unless ok holds.
func (v *Validator) Check(ok bool, field string, value any, format string, args ...any) bool {
	if !ok {
		v.AddError(field, fmt.Sprintf(format, args...), value)
	}
	return ok
}

func (v *Validator) IsValid() bool   { return len(v.errors) == 0 }
func (v *Validator) Errors() []Error { return v.errors }

// Err returns nil or a ValidationError holding a copy of the failures.
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return ValidationError{errors: slices.Clone(v.errors)}
}

func (v *Validator) NotEmpty(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, value, "value cannot be empty")
}

func (v *Validator) OneOf(field, value string, allowed []string) {
	v.Check(slices.Contains(allowed, value), field, value, "value must be one of %v, got %q", allowed, value)
}

// Range checks minVal <= value <= maxVal.
func (v *Validator) Range(field string, value, minVal, maxVal int) {
	v.Check(value >= minVal && value <= maxVal, field, value,
		"value must be between %d and %d, got %d", minVal, maxVal, value)
}

// Fraction checks a ratio in [0, 1].
func (v *Validator) Fraction(field string, value float64) {
	v.Check(value >= 0 && value <= 1, field, value, "value must be between 0 and 1, got %g", value)
}

func (v *Validator) NonNegative(field string, value int64) {
	v.Check(value >= 0, field, value, "value cannot be negative, got %d", value)
}

// LogLevel accepts zerolog level names. Empty means the default level.
func (v *Validator) LogLevel(field, value string) {
	if value == "" {
		return
	}
	_, err := zerolog.ParseLevel(value)
	v.Check(err == nil, field, value, "unknown log level %q", value)
}

// ListenAddr requires host:port with a port; an empty host binds every
// interface.
func (v *Validator) ListenAddr(field, addr string) {
	if !v.Check(addr != "", field, addr, "listen address cannot be empty") {
		return
	}
	_, port, err := net.SplitHostPort(addr)
	v.Check(err == nil && port != "", field, addr, "invalid listen address %q (want host:port)", addr)
}

// IPOrCIDR checks every non-blank entry is an address or a prefix.
func (v *Validator) IPOrCIDR(field string, entries []string) {
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		_, addrErr := netip.ParseAddr(entry)
		_, prefixErr := netip.ParsePrefix(entry)
		v.Check(addrErr == nil || prefixErr == nil, field, entry, "must be a valid IP or CIDR")
	}
}

// URL requires a parseable URL with a host and, when allowedSchemes is
// non-empty, one of those schemes.
func (v *Validator) URL(field, value string, allowedSchemes []string) {
	if !v.Check(value != "", field, value, "URL cannot be empty") {
		return
	}
	u, err := url.Parse(value)
	if err != nil {
		v.AddError(field, "invalid URL", value)
		return
	}
	if !v.Check(u.Host != "", field, value, "URL must have a host") {
		return
	}
	if len(allowedSchemes) > 0 {
		v.Check(slices.Contains(allowedSchemes, u.Scheme), field, value,
			"unsupported URL scheme %q (allowed: %v)", u.Scheme, allowedSchemes)
	}
}

// Directory checks path names a directory. Unless mustExist is set a
// missing directory is created.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if !v.Check(path != "", field, path, "directory path cannot be empty") {
		return
	}
	if !v.Check(!strings.Contains(path, ".."), field, path, "path contains traversal sequences (..)") {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid path: %v", err), path)
		return
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist) && mustExist:
		v.AddError(field, "directory does not exist", path)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o750); err != nil {
			v.AddError(field, fmt.Sprintf("cannot create directory: %v", err), path)
		}
	case err != nil:
		v.AddError(field, fmt.Sprintf("cannot access directory: %v", err), path)
	default:
		v.Check(info.IsDir(), field, path, "path is not a directory")
	}
}
