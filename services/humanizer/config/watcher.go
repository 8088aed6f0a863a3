// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/humanizer/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ChangeHandler receives each successfully reloaded config.
type ChangeHandler func(cfg HumanizerConfig)

// Watcher reloads the config file when it changes.
//
// # Description
//
// Watches the file's directory rather than the file itself, so editors
// that save by rename are still seen. Bursts of events are collapsed by a
// debounce window. A reload that fails to parse or validate is logged and
// skipped; the handler only ever sees valid configs.
//
// # Thread Safety
//
// The handler runs on the Run goroutine. Run must be called at most once.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  ChangeHandler
	logger   *logging.Logger
	ready    chan struct{}
}

// NewWatcher creates a Watcher for path.
//
// # Inputs
//
//   - path: Config file. It need not exist yet.
//   - handler: Called with each valid reload.
//   - debounce: Settle window. Non-positive means DefaultDebounce.
//   - logger: nil means logging.Default().
func NewWatcher(path string, handler ChangeHandler, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		handler:  handler,
		logger:   logger,
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the underlying watch is established.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done.
//
// # Outputs
//
//   - error: Non-nil only if the watch could not be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	close(w.ready)
	w.logger.Debug("Watching config", "path", w.path)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watcher error", "error", err)

		case <-timerC:
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Ignoring config change", "path", w.path, "error", err)
		return
	}
	w.logger.Info("Config reloaded", "path", w.path)
	if w.handler != nil {
		w.handler(cfg)
	}
}
