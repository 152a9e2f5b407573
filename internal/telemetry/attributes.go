// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys shared by the HTTP edge and the customer service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPRequestIDKey  = "http.request_id"

	CustomerIDKey     = "customer.id"
	CustomerActionKey = "customer.action"
	CustomerFilterKey = "customer.filter"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes describes a served request once its route is known.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CustomerAttributes identifies the record an operation touched.
// Zero ids (create before insert, list) are omitted.
func CustomerAttributes(id int64) []attribute.KeyValue {
	if id == 0 {
		return nil
	}
	return []attribute.KeyValue{attribute.Int64(CustomerIDKey, id)}
}

// ErrorAttributes classifies a failed operation by outcome kind
// (not_found, invalid, error). Nil errors yield no attributes.
func ErrorAttributes(err error, kind string) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, kind),
	}
}
