// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/custd/internal/api/middleware"
	"github.com/ManuGH/custd/internal/api/problem"
)

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(s.cfg.Stack)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "The requested URL was not found on the server.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL.")
	})

	// Public
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Get("/openapi.yaml", s.handleOpenAPI)
	if s.cfg.MetricsEndpoint {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Customers
	r.Post("/customers", s.handleCreateCustomer)
	r.Get("/customers", s.handleListCustomers)
	r.Get("/customers/{id}", s.handleGetCustomer)
	r.Put("/customers/{id}", s.handleUpdateCustomer)
	r.Delete("/customers/{id}", s.handleDeleteCustomer)
	r.Put("/customers/{id}/action", s.handleCustomerAction)

	return r
}
