// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/custd/internal/api/problem"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/log"
)

const msgInternal = "Internal Server Error: the request could not be completed."

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Int(log.FieldStatus, code).
			Msg("failed to encode response")
	}
}

// writeNotFound answers 404 for a customer id as it appeared in the path.
func writeNotFound(w http.ResponseWriter, r *http.Request, rawID string) {
	problem.Write(w, r, http.StatusNotFound, fmt.Sprintf("Customer with id '%s' was not found.", rawID))
}

// writeError maps service errors onto HTTP responses. Validation failures
// carry their own client message; anything unrecognised is a 500 and the
// cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, rawID string, err error) {
	var verr *customer.ValidationError
	switch {
	case errors.As(err, &verr):
		problem.Write(w, r, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, customer.ErrNotFound):
		writeNotFound(w, r, rawID)
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.internal_error").
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Msg("request failed")
		problem.Write(w, r, http.StatusInternalServerError, msgInternal)
	}
}
