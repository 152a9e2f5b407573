// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
		want      string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			requestID: "test-id-123",
			want:      "test-id-123",
		},
		{
			name:      "background context",
			ctx:       context.Background(),
			requestID: "req-456",
			want:      "req-456",
		},
		{
			name:      "empty request ID",
			ctx:       context.Background(),
			requestID: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.requestID)
			got := RequestIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "nil context", ctx: nil, want: ""},
		{name: "context without request ID", ctx: context.Background(), want: ""},
		{name: "context with wrong type", ctx: context.WithValue(context.Background(), requestIDKey{}, 123), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequestIDFromContext(tt.ctx); got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test"})
	t.Cleanup(func() { Configure(Config{}) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestWithComponentFromContext_AddsRequestID(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	logger := WithComponentFromContext(ctx, "customers")
	logger.Info().Msg("hello")

	entry := decodeLine(t, buf)
	if entry[FieldRequestID] != "req-123" {
		t.Errorf("expected request_id req-123, got %v", entry[FieldRequestID])
	}
	if entry[FieldComponent] != "customers" {
		t.Errorf("expected component customers, got %v", entry[FieldComponent])
	}
	if entry["service"] != "test" {
		t.Errorf("expected service test, got %v", entry["service"])
	}
}

func TestWithContext_NoIDsReturnsSameFields(t *testing.T) {
	buf := captureLogs(t)

	logger := WithContext(context.Background(), WithComponent("plain"))
	logger.Info().Msg("plain")

	entry := decodeLine(t, buf)
	if _, ok := entry[FieldRequestID]; ok {
		t.Error("did not expect request_id without one in context")
	}
	if _, ok := entry[FieldTraceID]; ok {
		t.Error("did not expect trace_id without a span")
	}
}

func TestWithComponentFromContext_AddsTraceIDs(t *testing.T) {
	buf := captureLogs(t)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = ContextWithRequestID(ctx, "req-9")

	logger := WithComponentFromContext(ctx, "customer")
	logger.Info().Msg("test with trace")

	entry := decodeLine(t, buf)
	if entry[FieldTraceID] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected trace_id in log output, got %v", entry[FieldTraceID])
	}
	if entry[FieldSpanID] != "00f067aa0ba902b7" {
		t.Errorf("expected span_id in log output, got %v", entry[FieldSpanID])
	}
	if entry[FieldRequestID] != "req-9" {
		t.Errorf("expected request_id req-9, got %v", entry[FieldRequestID])
	}
}
