// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/humanizer/pkg/logging"
)

// startWatcher runs a watcher on path and returns the reload channel.
func startWatcher(t *testing.T, path string) <-chan HumanizerConfig {
	t.Helper()
	reloads := make(chan HumanizerConfig, 8)
	w, err := NewWatcher(path, func(cfg HumanizerConfig) { reloads <- cfg }, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return reloads
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "server:\n  port: 8080\n")
	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	select {
	case cfg := <-reloads:
		assert.Equal(t, 9090, cfg.Server.Port)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "server:\n  port: 8080\n")
	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0644))

	select {
	case cfg := <-reloads:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0644))
	select {
	case cfg := <-reloads:
		assert.Equal(t, 7070, cfg.Server.Port)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after fixing config")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "server:\n  port: 8080\n")
	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case cfg := <-reloads:
		t.Fatalf("unexpected reload: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "server:\n  port: 8080\n")
	reloads := startWatcher(t, path)

	for port := 8001; port <= 8005; port++ {
		body := []byte("server:\n  port: " + strconv.Itoa(port) + "\n")
		require.NoError(t, os.WriteFile(path, body, 0644))
	}

	var last HumanizerConfig
	select {
	case last = <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after burst")
	}
	// Drain anything a slow filesystem split into a second batch.
	for drained := false; !drained; {
		select {
		case last = <-reloads:
		case <-time.After(200 * time.Millisecond):
			drained = true
		}
	}
	assert.Equal(t, 8005, last.Server.Port)
}

func TestNewWatcher_MissingDirectoryFailsRun(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "humanizer.yaml"), nil, 0, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	assert.Error(t, w.Run(context.Background()))
}
