// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/services/humanizer/handlers"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
)

// Options wires the server's dependencies.
type Options struct {
	// Transformer answers every API call. Required.
	Transformer handlers.Transformer

	// Version is reported by /api/health.
	Version string

	// ServiceName names the otelgin server spans.
	ServiceName string

	// Logger for access and handler logs. nil means logging.Default().
	Logger *logging.Logger

	// Metrics sink. nil disables request metrics.
	Metrics *observability.Metrics

	// Gatherer backs /metrics. nil means the route is not registered.
	Gatherer prometheus.Gatherer

	// Limiter throttles /api/*. nil means unlimited.
	Limiter *rate.Limiter

	// CORSOrigin for Access-Control-Allow-Origin. "" disables CORS.
	CORSOrigin string
}

// SetupRoutes registers middleware and the /api/* and /metrics routes.
func SetupRoutes(router *gin.Engine, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "humanizer"
	}

	router.Use(
		otelgin.Middleware(serviceName),
		RequestID(),
		AccessLog(logger, opts.Metrics),
		CORS(opts.CORSOrigin),
	)

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(RateLimit(opts.Limiter))
	}
	{
		api.GET("/health", handlers.HandleHealth(opts.Transformer, opts.Version))
		api.POST("/transform", handlers.HandleTransform(opts.Transformer, logger))
		api.GET("/sample", handlers.HandleSample(opts.Transformer))
		// Preflight requests must reach the CORS middleware.
		api.OPTIONS("/*path", func(c *gin.Context) {})
	}
}
