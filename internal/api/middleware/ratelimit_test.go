// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/custd/internal/api/problem"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func doFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_EnforcesLimit(t *testing.T) {
	limited := RateLimit(RateLimitConfig{RequestLimit: 3, WindowSize: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doFrom(limited, "192.168.1.1:12345").Code, "request %d", i+1)
	}

	w := doFrom(limited, "192.168.1.1:12345")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body problem.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.Status)
	assert.Equal(t, "Too Many Requests", body.Error)
}

func TestRateLimit_DifferentIPsIndependent(t *testing.T) {
	limited := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Minute})(okHandler())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doFrom(limited, "10.0.0.1:1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doFrom(limited, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, doFrom(limited, "10.0.0.2:1").Code)
}

func TestRateLimit_Whitelist(t *testing.T) {
	limited := RateLimit(RateLimitConfig{
		RequestLimit: 1,
		WindowSize:   time.Minute,
		Whitelist:    []string{"127.0.0.1", "10.1.0.0/16", "not-an-ip"},
	})(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doFrom(limited, "127.0.0.1:999").Code)
		assert.Equal(t, http.StatusOK, doFrom(limited, "10.1.2.3:999").Code)
	}
	assert.Equal(t, http.StatusOK, doFrom(limited, "10.2.0.1:999").Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(limited, "10.2.0.1:999").Code)
}

func TestAPIRateLimit_DisabledWhenZero(t *testing.T) {
	h := APIRateLimit(0, nil)(okHandler())
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, doFrom(h, "192.0.2.1:1").Code)
	}
}
