// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/ManuGH/custd/internal/api/problem"
	"github.com/ManuGH/custd/internal/log"
)

// validRequestID bounds what a client may inject into logs.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,128}$`)

// RequestID adds a unique ID to every request. A well formed incoming
// X-Request-ID is reused.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(problem.HeaderRequestID)
		if !validRequestID.MatchString(reqID) {
			reqID = uuid.New().String()
		}
		w.Header().Set(problem.HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
