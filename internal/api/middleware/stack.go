// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/custd/internal/log"
)

// StackConfig selects which ingress middlewares wrap the customer API.
type StackConfig struct {
	EnableCORS     bool
	AllowedOrigins []string

	EnableSecurityHeaders bool
	CSP                   string

	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	EnableRateLimit    bool
	RateLimitRPS       int
	RateLimitWhitelist []string
}

// NewRouter constructs a chi router with the configured stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack installs the middlewares in order, outermost first. Recovery
// and request ids are always on; everything else follows cfg.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Chain(cfg)...)
}

// Chain returns the ordered middleware list for cfg. Logging sits inside
// metrics and tracing so its latency covers only the handler, and the rate
// limiter runs last so rejected requests are still logged and counted.
func Chain(cfg StackConfig) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{Recoverer, RequestID}
	add := func(on bool, build func() func(http.Handler) http.Handler) {
		if on {
			chain = append(chain, build())
		}
	}
	add(cfg.EnableCORS, func() func(http.Handler) http.Handler { return CORS(cfg.AllowedOrigins) })
	add(cfg.EnableSecurityHeaders, func() func(http.Handler) http.Handler { return SecurityHeaders(cfg.CSP) })
	add(cfg.EnableMetrics, Metrics)
	add(cfg.TracingService != "", func() func(http.Handler) http.Handler { return Tracing(cfg.TracingService) })
	add(cfg.EnableLogging, log.Middleware)
	add(cfg.EnableRateLimit, func() func(http.Handler) http.Handler {
		return APIRateLimit(cfg.RateLimitRPS, cfg.RateLimitWhitelist)
	})
	return chain
}
