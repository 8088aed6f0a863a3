// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the humanizer.
//
// # Description
//
// Metrics cover the failover path end to end:
//   - Transforms served, by engine (remote, local)
//   - Fallbacks from remote to local, by operation and failure reason
//   - Availability probes, by result, plus a remote-available gauge
//   - Transform latency histograms, by engine
//   - HTTP requests served by the API server, by route and status
//
// # Integration
//
// Metrics are registered on a caller-supplied prometheus.Registerer and
// exposed via the /metrics route. All Record* methods are nil-safe, so
// components built without metrics need no special casing.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "humanizer"

const (
	engineSubsystem = "engine"
	httpSubsystem   = "http"
)

// Metrics holds all Prometheus collectors for the humanizer.
type Metrics struct {
	// TransformsTotal counts transforms served.
	// Labels: engine (remote, local)
	TransformsTotal *prometheus.CounterVec

	// FallbacksTotal counts remote failures papered over by the local engine.
	// Labels: operation (transform, sample), reason (TRANSPORT, STATUS, ...)
	FallbacksTotal *prometheus.CounterVec

	// ProbesTotal counts availability probes.
	// Labels: result (available, unavailable)
	ProbesTotal *prometheus.CounterVec

	// RemoteAvailable is 1 when the last probe found the remote healthy.
	RemoteAvailable prometheus.Gauge

	// TransformDurationSeconds measures transform latency.
	// Labels: engine
	TransformDurationSeconds *prometheus.HistogramVec

	// HTTPRequestsTotal counts API requests served.
	// Labels: route, status
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on reg.
//
// # Inputs
//
//   - reg: Registry to register on. Use prometheus.NewRegistry() in tests
//     to avoid duplicate-registration panics.
//
// # Outputs
//
//   - *Metrics: Registered collectors.
//
// # Limitations
//
//   - Panics if called twice with the same registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransformsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: engineSubsystem,
				Name:      "transforms_total",
				Help:      "Total transforms served by engine",
			},
			[]string{"engine"},
		),

		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: engineSubsystem,
				Name:      "fallbacks_total",
				Help:      "Total remote failures served by the local engine, by operation and reason",
			},
			[]string{"operation", "reason"},
		),

		ProbesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: engineSubsystem,
				Name:      "probes_total",
				Help:      "Total remote availability probes by result",
			},
			[]string{"result"},
		),

		RemoteAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: engineSubsystem,
				Name:      "remote_available",
				Help:      "1 if the last probe found the remote engine healthy, else 0",
			},
		),

		TransformDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: engineSubsystem,
				Name:      "transform_duration_seconds",
				Help:      "Transform latency in seconds by engine",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.025, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"engine"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total API requests by route and status code",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordTransform records one served transform and its latency.
func (m *Metrics) RecordTransform(engine string, d time.Duration) {
	if m == nil {
		return
	}
	m.TransformsTotal.WithLabelValues(engine).Inc()
	m.TransformDurationSeconds.WithLabelValues(engine).Observe(d.Seconds())
}

// RecordFallback records a remote failure served locally.
func (m *Metrics) RecordFallback(operation, reason string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(operation, reason).Inc()
}

// RecordProbe records a probe outcome and updates the availability gauge.
func (m *Metrics) RecordProbe(available bool) {
	if m == nil {
		return
	}
	if available {
		m.ProbesTotal.WithLabelValues("available").Inc()
		m.RemoteAvailable.Set(1)
		return
	}
	m.ProbesTotal.WithLabelValues("unavailable").Inc()
	m.RemoteAvailable.Set(0)
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
