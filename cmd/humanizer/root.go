// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/pkg/ux"
	"github.com/AleutianAI/humanizer/services/humanizer/config"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// serviceName is attached to logs and trace resources.
const serviceName = "humanizer"

// tracingShutdownTimeout bounds the final span flush.
const tracingShutdownTimeout = 5 * time.Second

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	remoteURL  string
}

// resolveConfigPath returns --config or the default location.
func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultPath()
}

// newRootCmd builds the command tree.
//
// # Description
//
// Every invocation gets a fresh tree so flag state never leaks between
// executions, which keeps the commands testable in-process.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "humanizer",
		Short: "Rewrite text so it reads less mechanically",
		Long: `humanizer expands contractions, injects transitions and optionally
rewrites passive constructions and synonyms.

When a remote humanizer service is configured it is preferred; the
built-in engine answers whenever the remote is unavailable or fails.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Config file (default ~/.humanizer/humanizer.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level override: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.remoteURL, "remote-url", "",
		"Remote humanizer base URL, e.g. http://localhost:5000")

	cmd.AddCommand(
		newTransformCmd(opts),
		newSampleCmd(opts),
		newProbeCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// app carries what every command needs after flags are parsed.
type app struct {
	cfg        config.HumanizerConfig
	configPath string
	logger     *logging.Logger
	printer    *ux.Printer
	shutdown   func(context.Context) error
}

// newApp loads config, applies flag overrides and starts logging and
// tracing.
//
// # Description
//
// Precedence is flags, then environment, then the config file, then
// defaults. The caller must Close the returned app.
//
// # Outputs
//
//   - *app: Ready to use.
//   - error: Config load, validation or tracer initialization failure.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	path, err := opts.resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.remoteURL != "" {
		cfg.Remote.BaseURL = strings.TrimSpace(opts.remoteURL)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: serviceName,
		JSON:    cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})

	shutdown, err := initTracing(cmd.Context(), cfg.Tracing, cmd.ErrOrStderr())
	if err != nil {
		logger.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		printer:    newPrinter(cmd),
		shutdown:   shutdown,
	}, nil
}

// Close flushes spans and releases the log file.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", "error", err)
	}
	a.logger.Close()
}

// remote returns the configured remote engine, or nil when none is set.
func (a *app) remote() (*engine.RemoteEngine, error) {
	if a.cfg.Remote.BaseURL == "" {
		return nil, nil
	}
	return engine.NewRemoteEngine(engine.RemoteConfig{
		BaseURL: a.cfg.Remote.BaseURL,
		Timeout: a.cfg.Remote.Timeout,
	})
}

// facadeParts is the assembled engine stack.
type facadeParts struct {
	facade *engine.Facade
	remote *engine.RemoteEngine
	prober *engine.Prober
}

// buildFacade assembles the local engine, the optional remote, its prober
// and the optional cool-down breaker.
//
// # Description
//
// When the cool-down is enabled the prober resets it each time the remote
// comes back, so a recovered remote is used immediately instead of after
// the open timeout.
//
// # Inputs
//
//   - local: Fallback engine.
//   - metrics: May be nil.
func (a *app) buildFacade(local *engine.LocalEngine, metrics *observability.Metrics) (*facadeParts, error) {
	remote, err := a.remote()
	if err != nil {
		return nil, err
	}

	availability := engine.NewAvailability()
	opts := []engine.FacadeOption{
		engine.WithAvailability(availability),
		engine.WithLogger(a.logger),
		engine.WithMetrics(metrics),
	}
	if a.cfg.Cooldown.Enabled {
		opts = append(opts, engine.WithCooldown(cooldownConfig(a.cfg.Cooldown)))
	}

	parts := &facadeParts{remote: remote}
	if remote == nil {
		parts.facade = engine.NewFacade(nil, local, opts...)
		return parts, nil
	}

	parts.facade = engine.NewFacade(remote, local, opts...)
	facade := parts.facade
	parts.prober = engine.NewProber(remote, availability,
		engine.WithProbeTimeout(a.cfg.Remote.ProbeTimeout),
		engine.WithProbeLogger(a.logger),
		engine.WithProbeMetrics(metrics),
		engine.OnAvailabilityChange(func(_, to engine.AvailabilityState) {
			if to == engine.AvailabilityAvailable {
				facade.ResetCooldown()
			}
		}),
	)
	return parts, nil
}

func cooldownConfig(c config.CooldownConfig) engine.CircuitBreakerConfig {
	return engine.CircuitBreakerConfig{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		OpenTimeout:      c.OpenTimeout,
	}
}

// errNoRemote is returned by commands that need a remote URL.
var errNoRemote = fmt.Errorf("no remote URL configured: set --remote-url, %s or remote.base_url", config.EnvRemoteURL)
