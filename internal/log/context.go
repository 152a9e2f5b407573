// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying id. A nil ctx is
// treated as context.Background().
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext adds the correlation fields found in ctx to logger: the
// request id and, inside a sampled or remote span, the trace and span ids.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	rid := RequestIDFromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if rid == "" && !sc.IsValid() {
		return logger
	}

	lc := logger.With()
	if rid != "" {
		lc = lc.Str(FieldRequestID, rid)
	}
	if sc.IsValid() {
		lc = lc.Str(FieldTraceID, sc.TraceID().String()).
			Str(FieldSpanID, sc.SpanID().String())
	}
	return lc.Logger()
}

// WithComponentFromContext is WithContext applied to WithComponent(component).
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
