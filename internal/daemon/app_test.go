// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/store"
)

type fakeManager struct {
	started   chan struct{}
	startErr  error
	shutdowns atomic.Int32
}

func newFakeManager(startErr error) *fakeManager {
	return &fakeManager{started: make(chan struct{}), startErr: startErr}
}

func (f *fakeManager) Start(ctx context.Context) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeManager) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	return nil
}

func (f *fakeManager) RegisterShutdownHook(string, ShutdownHook) {}

func TestApp_MissingManager(t *testing.T) {
	app := NewApp(log.WithComponent("test"), nil, nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mgr := newFakeManager(nil)
	app := NewApp(log.WithComponent("test"), mgr, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	<-mgr.started
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Zero(t, mgr.shutdowns.Load())
}

func TestApp_StartErrorTriggersShutdown(t *testing.T) {
	boom := errors.New("bind failed")
	mgr := newFakeManager(boom)
	app := NewApp(log.WithComponent("test"), mgr, nil, nil)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), mgr.shutdowns.Load())
}

func TestApp_AppliesReloadedLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	path := filepath.Join(dir, "custd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: info\n"), 0o600))

	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	holder := config.NewConfigHolder(cfg, loader)
	svc := customer.NewService(store.NewMemoryStore())

	mgr := newFakeManager(nil)
	app := NewApp(log.WithComponent("test"), mgr, holder, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	<-mgr.started

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\ncache:\n  ttl: 5s\n"), 0o600))
	require.NoError(t, holder.Reload(ctx))

	assert.Eventually(t, func() bool {
		return zerolog.GlobalLevel() == zerolog.DebugLevel
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
