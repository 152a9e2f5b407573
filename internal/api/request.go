// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/custd/internal/api/problem"
)

const contentTypeJSON = "application/json"

// requireJSON rejects requests whose media type is not application/json.
// Parameters such as charset are accepted.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt == contentTypeJSON {
			return true
		}
	}
	problem.Write(w, r, http.StatusUnsupportedMediaType, "Content-Type must be "+contentTypeJSON)
	return false
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, "Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		problem.Write(w, r, http.StatusBadRequest, "Invalid input data: could not read request body")
		return nil, false
	}
	return body, true
}

// customerID parses the {id} path parameter. Only plain decimal digits
// without a leading zero name a customer; anything else is reported as a
// missing customer.
func customerID(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !canonicalID(raw) {
		writeNotFound(w, r, raw)
		return 0, raw, false
	}
	return id, raw, true
}

func canonicalID(raw string) bool {
	if raw == "" || (raw[0] == '0' && len(raw) > 1) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// absoluteURL builds an absolute URL for path from the request scheme and host.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
