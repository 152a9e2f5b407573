// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custd_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "path", "status"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custd_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})

	httpRequestBodySize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custd_http_request_body_bytes",
		Help:    "Declared request body sizes for customer writes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 6),
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custd_http_response_size_bytes",
		Help:    "HTTP response sizes in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path", "status"})
)

// unmatchedRoute labels requests that no route matched, keeping the path
// label bounded.
const unmatchedRoute = "unmatched"

// Metrics records latency, body sizes and concurrency per route pattern.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := routePattern(r)
			status := strconv.Itoa(responseStatus(ww))
			httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			if r.ContentLength > 0 {
				httpRequestBodySize.WithLabelValues(r.Method, path).Observe(float64(r.ContentLength))
			}
			if n := ww.BytesWritten(); n > 0 {
				httpResponseSize.WithLabelValues(r.Method, path, status).Observe(float64(n))
			}
		})
	}
}

// routePattern returns the matched chi pattern (e.g. /customers/{id}).
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// responseStatus reports 200 for handlers that never wrote a header.
func responseStatus(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
