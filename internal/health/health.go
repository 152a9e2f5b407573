// SPDX-License-Identifier: MIT

// Package health provides liveness and readiness checks with per-component
// status for container probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/custd/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthResponse represents the full health check response
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    int64                  `json:"uptime_seconds"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs the registered checkers for the liveness and readiness
// endpoints.
type Manager struct {
	version  string
	started  time.Time
	mu       sync.RWMutex
	checkers []Checker
}

func NewManager(version string) *Manager {
	return &Manager{version: version, started: time.Now()}
}

func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// runChecks runs every checker concurrently, so a slow store ping does
// not delay the cache ping, and folds the results into one status.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	m.mu.RLock()
	checkers := slices.Clone(m.checkers)
	m.mu.RUnlock()
	if len(checkers) == 0 {
		return nil, StatusHealthy
	}

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			start := time.Now()
			results[i] = c.Check(ctx)
			results[i].LatencyMS = time.Since(start).Milliseconds()
			return nil
		})
	}
	_ = g.Wait()

	byName := make(map[string]CheckResult, len(checkers))
	overall := StatusHealthy
	for i, c := range checkers {
		byName[c.Name()] = results[i]
		overall = worse(overall, results[i].Status)
	}
	return byName, overall
}

func worse(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Health is the liveness answer. Checkers only run when verbose is set.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Uptime:    int64(time.Since(m.started).Seconds()),
		Timestamp: time.Now(),
	}
	if verbose {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready reports not ready only when a component is unhealthy.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	checks, status := m.runChecks(ctx)
	return ReadinessResponse{
		Ready:     status != StatusUnhealthy,
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// ServeHealth always answers 200; ?verbose=true includes component checks.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"
	resp := m.Health(r.Context(), verbose)
	writeJSON(w, r, "health", http.StatusOK, resp, resp.Status)
}

// ServeReady answers 200 when ready and 503 otherwise.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, "readiness", code, resp, resp.Status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, probe string, code int, body any, status Status) {
	logger := log.WithComponentFromContext(r.Context(), probe)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, probe+".encode_error").Msg("failed to encode probe response")
		return
	}
	logger.Debug().
		Str(log.FieldEvent, probe+".checked").
		Str("health", string(status)).
		Int(log.FieldStatus, code).
		Msg("probe answered")
}

// PingChecker reports a component as unhealthy when its ping fails.
type PingChecker struct {
	name     string
	ping     func(ctx context.Context) error
	timeout  time.Duration
	degraded bool
}

// NewPingChecker wraps ping as a Checker. Each check is bounded by timeout.
func NewPingChecker(name string, timeout time.Duration, ping func(ctx context.Context) error) *PingChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &PingChecker{name: name, ping: ping, timeout: timeout}
}

// Optional makes ping failures report degraded instead of unhealthy.
func (c *PingChecker) Optional() *PingChecker {
	c.degraded = true
	return c
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.degraded {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}
