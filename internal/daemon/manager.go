// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/custd/internal/config"
)

// drainTimeout caps the shutdown that follows a server failure or a
// cancelled Start context.
const drainTimeout = 30 * time.Second

// ShutdownHook releases a resource during graceful shutdown. Hooks run in
// reverse registration order.
type ShutdownHook func(ctx context.Context) error

// Manager owns the HTTP listeners of the daemon and the cleanup that
// follows them.
type Manager interface {
	// Start serves until ctx is cancelled or a listener fails, then shuts down.
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterShutdownHook(name string, hook ShutdownHook)
}

type namedServer struct {
	name string
	srv  *http.Server
}

type namedHook struct {
	name string
	hook ShutdownHook
}

type manager struct {
	serverCfg config.ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu       sync.Mutex
	started  bool
	stopping bool
	servers  []namedServer
	hooks    []namedHook
}

// NewManager validates deps and returns an unstarted Manager.
func NewManager(serverCfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "manager").Logger(),
	}, nil
}

// buildServers lists the listeners in start order. The API server is last
// so it only accepts traffic once metrics are being served.
func (m *manager) buildServers() []namedServer {
	var servers []namedServer
	if m.deps.MetricsHandler != nil && m.deps.MetricsAddr != "" {
		servers = append(servers, namedServer{name: "metrics server", srv: &http.Server{
			Addr:              m.deps.MetricsAddr,
			Handler:           m.deps.MetricsHandler,
			ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		}})
	}
	servers = append(servers, namedServer{name: "API server", srv: &http.Server{
		Addr:              m.serverCfg.ListenAddr,
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}})
	return servers
}

func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerAlreadyStarted
	}
	m.started = true
	m.servers = m.buildServers()
	servers := m.servers
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.serverCfg.ListenAddr).
		Str("metrics_listen", m.deps.MetricsAddr).
		Dur("read_timeout", m.serverCfg.ReadTimeout).
		Dur("write_timeout", m.serverCfg.WriteTimeout).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting daemon manager")

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go m.serve(s, errCh)
	}

	var cause error
	select {
	case cause = <-errCh:
		m.logger.Error().Err(cause).Msg("listener failed, initiating shutdown")
	case <-ctx.Done():
		m.logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	shutdownErr := m.Shutdown(shutdownCtx)
	switch {
	case cause == nil:
		return shutdownErr
	case shutdownErr != nil:
		return fmt.Errorf("server error and shutdown failure: %w", errors.Join(cause, shutdownErr))
	default:
		return cause
	}
}

func (m *manager) serve(s namedServer, errCh chan<- error) {
	m.logger.Info().Str("addr", s.srv.Addr).Msgf("%s listening", s.name)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		m.logger.Error().
			Err(err).
			Str("event", "server.failed").
			Str("server", s.name).
			Msg("listener failed")
		errCh <- fmt.Errorf("%s: %w", s.name, err)
	}
}

// Shutdown drains the listeners, API first, then runs the hooks LIFO.
// Every failure is collected. A second call is a no-op.
func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return errors.New("shutdown context is nil")
	}

	m.mu.Lock()
	switch {
	case m.stopping:
		m.mu.Unlock()
		return nil
	case !m.started:
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	servers := append([]namedServer(nil), m.servers...)
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(servers) - 1; i >= 0; i-- {
		if err := servers[i].srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", servers[i].name, err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		err := h.hook(ctx)
		evt := m.logger.Debug()
		if err != nil {
			evt = m.logger.Error().Err(err)
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
		}
		evt.Str("hook", h.name).Dur("duration", time.Since(start)).Msg("shutdown hook finished")
	}

	if len(errs) > 0 {
		m.logger.Error().Int("error_count", len(errs)).Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Msg("daemon manager stopped cleanly")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
