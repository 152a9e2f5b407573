// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/custd/internal/log"
)

// isSensitiveKey reports whether the value of key must never be logged.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range []string{"password", "token", "dsn", "uri", "secret"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// lookup returns the raw value of key and logs where the value comes from.
// An empty variable counts as unset.
func lookup(logger zerolog.Logger, key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value")
		return "", false
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return v, true
}

// parseEnv reads key with parse and falls back to def when the variable
// is unset, empty or malformed. Malformed values are logged with kind.
func parseEnv[T any](key string, def T, kind string, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	raw, ok := lookup(logger, key)
	if !ok {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		ev := logger.Warn().Str("key", key).Interface("default", def)
		if !isSensitiveKey(key) {
			ev = ev.Str("value", raw)
		}
		ev.Msgf("invalid %s in environment variable, using default", kind)
		return def
	}
	return v
}

// ParseString returns the value of key, or defaultValue when it is unset
// or empty. The value is not trimmed.
func ParseString(key, defaultValue string) string {
	if v, ok := lookup(log.WithComponent("config"), key); ok {
		return v
	}
	return defaultValue
}

func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, "integer", strconv.Atoi)
}

// ParseInt64 is ParseInt for byte limits and other 64-bit values.
func ParseInt64(key string, defaultValue int64) int64 {
	return parseEnv(key, defaultValue, "integer", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration accepts Go duration syntax ("5s", "1m30s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, "duration", time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, "boolean", func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}

// ParseList splits a comma separated value, dropping blank entries.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(key, defaultValue, "list", func(s string) ([]string, error) {
		return splitCSV(s), nil
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
