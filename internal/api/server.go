// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the customer service over HTTP.
package api

import (
	"net/http"
	"sync"

	"github.com/ManuGH/custd/internal/api/middleware"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/health"
	"github.com/ManuGH/custd/internal/log"
)

// DefaultMaxBodyBytes bounds request bodies when Config.MaxBodyBytes is unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config controls the HTTP surface.
type Config struct {
	Stack middleware.StackConfig

	// MetricsEndpoint mounts /metrics on the API router. The daemon leaves
	// it off when a dedicated metrics listener is configured.
	MetricsEndpoint bool

	MaxBodyBytes int64
}

// Server owns the router and the dependencies handlers need.
type Server struct {
	svc    *customer.Service
	health *health.Manager
	cfg    Config

	once    sync.Once
	handler http.Handler
}

// New wires a Server. A nil health manager gets an empty one.
func New(svc *customer.Service, hm *health.Manager, cfg Config) *Server {
	if hm == nil {
		hm = health.NewManager("")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{svc: svc, health: hm, cfg: cfg}
}

// Handler returns the fully wired HTTP handler. The router is built once.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.handler = s.routes()
		logger := log.WithComponent("api")
		logger.Debug().
			Str(log.FieldEvent, "api.routes_ready").
			Bool("metrics_endpoint", s.cfg.MetricsEndpoint).
			Msg("http routes registered")
	})
	return s.handler
}
