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
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/humanizer/services/humanizer/config"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
	"github.com/AleutianAI/humanizer/services/humanizer/routes"
)

const readHeaderTimeout = 10 * time.Second

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// newServeCmd builds `humanizer serve`.
//
// # Description
//
// Serves the remote engine HTTP contract (/api/health, /api/transform,
// /api/sample) plus /metrics. With a remote URL configured the server
// runs in proxy mode: requests go to the upstream while it is available
// and to the built-in engine otherwise, with the upstream re-probed every
// remote.probe_interval.
//
// While running, edits to the config file adjust the rate limit and the
// cool-down without a restart.
//
// # Examples
//
//	humanizer serve
//	humanizer serve --port 8080
//	humanizer serve --remote-url http://upstream:5000
func newServeCmd(root *rootOptions) *cobra.Command {
	var host string
	var port int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the humanizer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			s, err := newServer(a, root.remoteURL != "")
			if err != nil {
				return err
			}

			addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var watcher *config.Watcher
			if _, err := os.Stat(a.configPath); watch && err == nil {
				watcher, err = config.NewWatcher(a.configPath, s.applyConfig, config.DefaultDebounce, a.logger)
				if err != nil {
					a.logger.Warn("Config hot reload disabled", "error", err)
				}
			}
			return s.serve(ctx, ln, watcher)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from config, 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config or PORT, 5000)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload rate limit and cool-down when the config file changes")
	return cmd
}

// =============================================================================
// SERVER
// =============================================================================

// server is the assembled HTTP service.
type server struct {
	app            *app
	router         *gin.Engine
	registry       *prometheus.Registry
	metrics        *observability.Metrics
	facade         *engine.Facade
	prober         *engine.Prober
	limiter        *rate.Limiter
	remoteOverride bool
}

// newServer wires metrics, the engine facade and the gin router.
//
// # Inputs
//
//   - a: Loaded app. a.cfg must already be validated.
//   - remoteOverride: The remote URL came from a flag, so config reloads
//     cannot change it.
func newServer(a *app, remoteOverride bool) (*server, error) {
	if a.cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	parts, err := a.buildFacade(engine.NewLocalEngine(), metrics)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(routes.LimitFor(a.cfg.Server.RateLimit), a.cfg.Server.RateBurst)

	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, routes.Options{
		Transformer: parts.facade,
		Version:     Version,
		ServiceName: serviceName,
		Logger:      a.logger,
		Metrics:     metrics,
		Gatherer:    registry,
		Limiter:     limiter,
		CORSOrigin:  a.cfg.Server.CORSOrigin,
	})

	return &server{
		app:            a,
		router:         router,
		registry:       registry,
		metrics:        metrics,
		facade:         parts.facade,
		prober:         parts.prober,
		limiter:        limiter,
		remoteOverride: remoteOverride,
	}, nil
}

// serve runs the HTTP server, the prober loop and the optional config
// watcher until ctx is done, then shuts the server down gracefully.
//
// # Outputs
//
//   - error: Non-nil if the server failed or did not drain in time.
func (s *server) serve(ctx context.Context, ln net.Listener, watcher *config.Watcher) error {
	logger := s.app.logger
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Humanizer server listening",
			"address", ln.Addr().String(),
			"proxy", s.facade.HasPrimary(),
			"version", Version,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down humanizer server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.app.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if s.prober != nil {
		interval := s.app.cfg.Remote.ProbeInterval
		g.Go(func() error {
			s.prober.Run(gctx, interval)
			return nil
		})
	}

	if watcher != nil {
		g.Go(func() error {
			// A broken watch must not take the server down.
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("Config hot reload disabled", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// applyConfig applies the reloadable parts of a new config.
//
// # Description
//
// The rate limit, burst and cool-down take effect for the next request.
// Anything else (listen address, remote URL, logging, tracing) needs a
// restart and is only reported.
func (s *server) applyConfig(cfg config.HumanizerConfig) {
	s.limiter.SetLimit(routes.LimitFor(cfg.Server.RateLimit))
	s.limiter.SetBurst(cfg.Server.RateBurst)

	if cfg.Cooldown.Enabled {
		cb := cooldownConfig(cfg.Cooldown)
		s.facade.SetCooldown(&cb)
	} else {
		s.facade.SetCooldown(nil)
	}

	s.app.logger.Info("Applied config reload",
		"rate_limit", cfg.Server.RateLimit,
		"rate_burst", cfg.Server.RateBurst,
		"cooldown", cfg.Cooldown.Enabled,
	)

	if !s.remoteOverride && cfg.Remote.BaseURL != s.app.cfg.Remote.BaseURL {
		s.app.logger.Warn("Remote URL change requires a restart",
			"current", s.app.cfg.Remote.BaseURL,
			"configured", cfg.Remote.BaseURL,
		)
	}
}
