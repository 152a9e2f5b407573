// Package problem writes the JSON error body shared by every endpoint and
// middleware.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/custd/internal/log"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

// Body is the error document returned to clients.
type Body struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write sends status with the standard error body. The reason phrase is
// derived from status; message is the client-facing detail.
func Write(w http.ResponseWriter, r *http.Request, status int, message string) {
	reqID := ""
	if r != nil {
		reqID = log.RequestIDFromContext(r.Context())
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}
	if reqID != "" {
		w.Header().Set(HeaderRequestID, reqID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := Body{Status: status, Error: http.StatusText(status), Message: message}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L().Error().
			Err(err).
			Int("status", status).
			Msg("failed to encode error response")
	}
}
