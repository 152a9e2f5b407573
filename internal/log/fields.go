// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldCustomerID = "customer_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"

	// Event fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Request fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldRemoteAddr = "remote_addr"

	// Store fields
	FieldBackend = "backend"
	FieldFilter  = "filter"
	FieldCount   = "count"
)
