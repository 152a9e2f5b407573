// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/custd/internal/api/problem"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	if !requireJSON(w, r) {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	in, err := customer.Decode(body)
	if err != nil {
		writeError(w, r, "", err)
		return
	}

	created, err := s.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, "", err)
		return
	}

	logger.Info().
		Int64(log.FieldCustomerID, created.ID).
		Msg("customer created")

	w.Header().Set("Location", absoluteURL(r, fmt.Sprintf("/customers/%d", created.ID)))
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	f, err := customer.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, "", err)
		return
	}

	out, err := s.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := customerID(w, r)
	if !ok {
		return
	}

	c, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, raw, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := customerID(w, r)
	if !ok {
		return
	}
	if !requireJSON(w, r) {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	in, err := customer.Decode(body)
	if err != nil {
		writeError(w, r, raw, err)
		return
	}

	updated, err := s.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, raw, err)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Int64(log.FieldCustomerID, id).
		Msg("customer updated")
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := customerID(w, r)
	if !ok {
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, raw, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actionRequest is the body of PUT /customers/{id}/action.
type actionRequest struct {
	Action any `json:"action"`
}

func (s *Server) handleCustomerAction(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := customerID(w, r)
	if !ok {
		return
	}
	if !requireJSON(w, r) {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := customer.DecodeJSON(body, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return
	}
	var name string
	if req.Action != nil {
		name = fmt.Sprint(req.Action)
	}
	action, err := customer.ParseAction(name)
	if err != nil {
		writeError(w, r, raw, err)
		return
	}

	c, err := s.svc.ApplyAction(r.Context(), id, action)
	if err != nil {
		writeError(w, r, raw, err)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Int64(log.FieldCustomerID, id).
		Str("action", string(action)).
		Str("status", string(c.Status)).
		Msg("customer action applied")
	writeJSON(w, r, http.StatusOK, c)
}
