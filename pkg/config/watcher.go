package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the time to wait before reloading after a
// change event. Editors fire several events per save; debouncing collapses
// them into one reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher watches a configuration file for changes and reloads it.
// It implements debouncing to prevent reload storms.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	// State
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration path is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  watcher,
		logger:   slog.Default().With("component", "config.watcher"),
		debounce: newDebouncer(DefaultDebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for file changes. On each change the configuration
// is reloaded (with environment overrides) and passed to onReload. A reload
// that fails to load or validate is logged and dropped; the previous
// configuration stays in effect.
//
// This is a blocking operation that runs until the context is cancelled or
// Stop is called.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("configuration watcher started",
		"path", w.path,
		"debounce_ms", DefaultDebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			w.logger.Debug("configuration file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			// Some editors replace the file on save, which removes the
			// watch. Re-add the path so subsequent saves are seen.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = w.watcher.Add(w.path)
			}

			w.debounce.trigger(func() {
				cfg, err := LoadConfigWithEnvOverrides(w.path)
				if err != nil {
					w.logger.Error("configuration reload failed, keeping previous configuration",
						"error", err,
					)
					return
				}

				w.logger.Info("configuration reloaded", "path", w.path)
				onReload(cfg)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			w.logger.Error("configuration watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// RequiresRestart compares two configurations and returns the dotted field
// paths of changed settings that cannot be applied to a running server.
// Everything else (log level, CORS, retention, export) takes effect on
// reload.
func RequiresRestart(old, new *Config) []string {
	var fields []string

	if old.Server.ListenAddress != new.Server.ListenAddress {
		fields = append(fields, "server.listen_address")
	}
	if old.Server.ReadTimeout != new.Server.ReadTimeout {
		fields = append(fields, "server.read_timeout")
	}
	if old.Server.WriteTimeout != new.Server.WriteTimeout {
		fields = append(fields, "server.write_timeout")
	}
	if old.Server.IdleTimeout != new.Server.IdleTimeout {
		fields = append(fields, "server.idle_timeout")
	}
	if old.Server.MaxHeaderBytes != new.Server.MaxHeaderBytes {
		fields = append(fields, "server.max_header_bytes")
	}
	if old.Server.TLS != new.Server.TLS {
		fields = append(fields, "server.tls")
	}
	if old.Storage.Backend != new.Storage.Backend {
		fields = append(fields, "storage.backend")
	}
	if old.Storage.SQLite != new.Storage.SQLite {
		fields = append(fields, "storage.sqlite")
	}
	if old.Telemetry.Metrics.Enabled != new.Telemetry.Metrics.Enabled {
		fields = append(fields, "telemetry.metrics.enabled")
	}

	return fields
}

// debouncer collapses rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger schedules the callback after the debounce interval, replacing any
// pending callback.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
