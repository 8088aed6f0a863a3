// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads, validates and watches the humanizer YAML config.
package config

import (
	"time"
)

// HumanizerConfig is the root of humanizer.yaml.
type HumanizerConfig struct {
	// Remote: the upstream engine. Empty base_url means local only.
	Remote RemoteConfig `yaml:"remote"`

	// Cooldown: optional circuit breaker in front of the remote engine.
	Cooldown CooldownConfig `yaml:"cooldown"`

	// Server: the API server started by `humanizer serve`.
	Server ServerConfig `yaml:"server"`

	// Logging: console and file log settings.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing: OpenTelemetry exporter.
	Tracing TracingConfig `yaml:"tracing"`
}

type RemoteConfig struct {
	BaseURL       string        `yaml:"base_url,omitempty" validate:"omitempty,url,startswith=http"` // e.g. http://localhost:5000
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`                                     // per call
	ProbeTimeout  time.Duration `yaml:"probe_timeout" validate:"gt=0"`                               // per health probe
	ProbeInterval time.Duration `yaml:"probe_interval" validate:"gte=0"`                             // 0 = probe once
}

type CooldownConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold" validate:"gte=1"`
	SuccessThreshold int           `yaml:"success_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `yaml:"open_timeout" validate:"gt=0"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"` // requests/second, 0 = unlimited
	RateBurst       int           `yaml:"rate_burst" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	CORSOrigin      string        `yaml:"cors_origin"` // "" disables CORS headers
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

type TracingConfig struct {
	// Exporter is "none", "stdout" or "otlp".
	Exporter    string  `yaml:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint    string  `yaml:"endpoint,omitempty" validate:"required_if=Exporter otlp"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the built-in configuration: local engine only,
// server on :5000, cool-down off, tracing off.
func DefaultConfig() HumanizerConfig {
	return HumanizerConfig{
		Remote: RemoteConfig{
			Timeout:       10 * time.Second,
			ProbeTimeout:  5 * time.Second,
			ProbeInterval: 30 * time.Second,
		},
		Cooldown: CooldownConfig{
			Enabled:          false,
			FailureThreshold: 5,
			SuccessThreshold: 2,
			OpenTimeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			RateLimit:       0,
			RateBurst:       20,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigin:      "*",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRatio: 1.0,
		},
	}
}
