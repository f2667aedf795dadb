// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/plantline/plantline/internal/log"
)

// Holder gives readers a consistent view of the configuration and swaps it
// atomically on reload. A reload that fails to load or validate keeps the
// previous configuration in place.
type Holder struct {
	mu      sync.RWMutex
	current Config
	path    string
	logger  zerolog.Logger

	listenMu  sync.Mutex
	listeners []chan<- Config
}

// NewHolder wraps an already-validated initial configuration. path may be
// empty when no file is in play; Watch is then a no-op.
func NewHolder(initial Config, path string) *Holder {
	return &Holder{
		current: initial,
		path:    path,
		logger:  log.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers ch for reload notifications. Sends are non-blocking; a
// listener that is not draining misses updates rather than stalling reloads.
func (h *Holder) Subscribe(ch chan<- Config) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

// Reload re-reads the file and environment and swaps the configuration.
func (h *Holder) Reload(context.Context) error {
	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload rejected, keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.logger.Info().
		Bool("listen_changed", old.Listen != newCfg.Listen).
		Bool("log_level_changed", old.LogLevel != newCfg.LogLevel).
		Msg("configuration reloaded")

	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- newCfg:
		default:
		}
	}
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx ends.
// Editors replace files rather than write in place, so rename/create events
// count as changes and the watch is re-added afterwards.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			h.logger.Warn().Err(err).Msg("closing config watcher")
		}
	}()

	if err := watcher.Add(h.path); err != nil {
		return fmt.Errorf("config watch %s: %w", h.path, err)
	}

	// Debounce: editors fire bursts of events per save.
	var timer *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Rename != 0 {
				// Re-add after the replace; ignore failure, the next
				// event will retry.
				_ = watcher.Add(h.path)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			// Reload logs its own failure and keeps the old config.
			_ = h.Reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
