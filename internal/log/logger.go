// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultService = "custd"

// Config captures options for the process-wide logger. Zero fields fall
// back to info level, stdout and the custd service name.
type Config struct {
	Level   string
	Output  io.Writer
	Service string
	Version string
	// Console switches to zerolog's human-readable writer.
	Console bool
}

var base atomic.Pointer[zerolog.Logger]

// Configure replaces the base logger. The daemon calls it once with safe
// defaults and again after the configuration is loaded.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	service := cfg.Service
	if service == "" {
		service = defaultService
	}

	l := zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Str("version", cfg.Version).
		Logger()
	base.Store(&l)
}

// SetLevel changes the global level without rebuilding the base logger.
// Unknown levels are rejected and leave the current level untouched.
func SetLevel(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parsed)
	return nil
}

func logger() zerolog.Logger {
	if l := base.Load(); l != nil {
		return *l
	}
	Configure(Config{})
	return *base.Load()
}

// L returns a copy of the base logger for one-off call sites.
func L() *zerolog.Logger {
	l := logger()
	return &l
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str(FieldComponent, component).Logger()
}
