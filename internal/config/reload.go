// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/metrics"
)

const defaultDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// It provides thread-safe access to configuration and supports hot reloading
// from file or a manual trigger such as SIGHUP.
type ConfigHolder struct {
	mu       sync.RWMutex
	current  AppConfig
	loader   *Loader
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current:  initial,
		loader:   loader,
		logger:   log.WithComponent("config"),
		debounce: defaultDebounce,
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration and swaps it in only when it loads and
// validates. On error the previous configuration stays active.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str(log.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		metrics.IncConfigReload("failure")
		h.logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	metrics.IncConfigReload("success")
	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str(log.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes.
// Without a config file this is a no-op (config comes from ENV only).
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str(log.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and renameio replace the file, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str(log.FieldEvent, "config.watcher_started").
		Str("path", path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, filepath.Clean(path))
	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context, path string) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(log.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str(log.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(h.debounce, func() {
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().
						Err(err).
						Str(log.FieldEvent, "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(log.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *ConfigHolder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// The channel will receive the new config whenever a reload succeeds.
// The caller is responsible for closing the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new config to all registered listeners (non-blocking).
func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(log.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// Change names a setting that differs between two configurations.
type Change struct {
	Setting string
	// Live settings are applied without a restart.
	Live bool
}

// Diff lists the settings that differ from old to newCfg. Only the log
// level and cache TTL are applied live. Values are never reported, so
// secrets such as the DSN stay out of the logs.
func Diff(old, newCfg AppConfig) []Change {
	checks := []struct {
		setting string
		live    bool
		changed bool
	}{
		{"logLevel", true, old.LogLevel != newCfg.LogLevel},
		{"cache.ttl", true, old.Cache.TTL != newCfg.Cache.TTL},
		{"logFormat", false, old.LogFormat != newCfg.LogFormat},
		{"api.listenAddr", false, old.API.ListenAddr != newCfg.API.ListenAddr},
		{"metrics.listenAddr", false, old.Metrics.ListenAddr != newCfg.Metrics.ListenAddr},
		{"store.backend", false, old.Store.Backend != newCfg.Store.Backend},
		{"store.path", false, old.Store.Path != newCfg.Store.Path},
		{"store.dsn", false, old.Store.DSN != newCfg.Store.DSN},
		{"cache.backend", false, old.Cache.Backend != newCfg.Cache.Backend},
		{"cache.redis.addr", false, old.Cache.RedisAddr != newCfg.Cache.RedisAddr},
	}
	var out []Change
	for _, c := range checks {
		if c.changed {
			out = append(out, Change{Setting: c.setting, Live: c.live})
		}
	}
	return out
}

func (h *ConfigHolder) logChanges(old, newCfg AppConfig) {
	var live, restart []string
	for _, c := range Diff(old, newCfg) {
		if c.Live {
			live = append(live, c.Setting)
		} else {
			restart = append(restart, c.Setting)
		}
	}
	if len(live) > 0 {
		h.logger.Info().
			Str(log.FieldEvent, "config.changed").
			Strs("settings", live).
			Msg("config changed")
	}
	if len(restart) > 0 {
		h.logger.Warn().
			Str(log.FieldEvent, "config.restart_required").
			Strs("settings", restart).
			Msg("settings changed that only apply after a restart")
	}
}
