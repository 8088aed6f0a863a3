// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvRemoteURL, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvOTLPEndpoint, "")
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "humanizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Remote.BaseURL)
	assert.False(t, cfg.Cooldown.Enabled)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), `
remote:
  base_url: http://upstream:5000
  timeout: 3s
cooldown:
  enabled: true
  failure_threshold: 2
server:
  port: 8080
logging:
  level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://upstream:5000", cfg.Remote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Remote.ProbeTimeout, "unset keys keep defaults")
	assert.True(t, cfg.Cooldown.Enabled)
	assert.Equal(t, 2, cfg.Cooldown.FailureThreshold)
	assert.Equal(t, 2, cfg.Cooldown.SuccessThreshold)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "server:\n  port: 8080\n")
	t.Setenv(EnvRemoteURL, " http://env-remote:9000 ")
	t.Setenv(EnvPort, "6001")
	t.Setenv(EnvOTLPEndpoint, "collector:4317")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://env-remote:9000", cfg.Remote.BaseURL)
	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{"bad yaml", "remote: [", nil, "failed to parse"},
		{"bad duration", "remote:\n  timeout: soon\n", nil, "failed to parse"},
		{"bad url", "remote:\n  base_url: not a url\n", nil, "BaseURL"},
		{"non-http url", "remote:\n  base_url: ftp://host\n", nil, "startswith"},
		{"port out of range", "server:\n  port: 70000\n", nil, "Port"},
		{"bad log level", "logging:\n  level: loud\n", nil, "Level"},
		{"bad exporter", "tracing:\n  exporter: zipkin\n", nil, "Exporter"},
		{"otlp without endpoint", "tracing:\n  exporter: otlp\n", nil, "Endpoint"},
		{"ratio above one", "tracing:\n  sample_ratio: 1.5\n", nil, "SampleRatio"},
		{"zero threshold", "cooldown:\n  failure_threshold: 0\n", nil, "FailureThreshold"},
		{"bad PORT env", "", map[string]string{EnvPort: "eighty"}, "invalid PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.body)

			_, err := Load(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_UnreadableIsError(t *testing.T) {
	clearEnv(t)
	// A directory cannot be read as a file.
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "humanizer.yaml")
	cfg := DefaultConfig()
	cfg.Remote.BaseURL = "https://humanizer.example.com"
	cfg.Cooldown.Enabled = true
	cfg.Remote.ProbeInterval = time.Minute

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "probe_interval: 1m0s")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/tmp/home-for-test")

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/home-for-test", ".humanizer", "humanizer.yaml"), path)
}
