// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
)

// DefaultProbeTimeout bounds a single health probe.
const DefaultProbeTimeout = 5 * time.Second

// HealthChecker is implemented by engines that expose /api/health.
type HealthChecker interface {
	Health(ctx context.Context) (datatypes.HealthResponse, error)
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout bounds each probe. Non-positive values are ignored.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeLogger sets the logger.
func WithProbeLogger(logger *logging.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProbeMetrics sets the metrics sink.
func WithProbeMetrics(m *observability.Metrics) ProberOption {
	return func(p *Prober) {
		p.metrics = m
	}
}

// OnAvailabilityChange registers a callback run after the state changes.
func OnAvailabilityChange(fn func(from, to AvailabilityState)) ProberOption {
	return func(p *Prober) {
		p.onChange = fn
	}
}

// Prober is the only writer of an Availability.
//
// # Description
//
// A probe is one bounded GET /api/health. Status "healthy" sets Available;
// every other outcome sets Unavailable. Concurrent Probe calls share a
// single in-flight request. A probe interrupted by its own caller's
// cancellation leaves the state untouched.
//
// # Thread Safety
//
// Prober is safe for concurrent use.
type Prober struct {
	checker      HealthChecker
	availability *Availability
	timeout      time.Duration
	logger       *logging.Logger
	metrics      *observability.Metrics
	onChange     func(from, to AvailabilityState)
	group        singleflight.Group
}

// NewProber creates a Prober writing to availability.
//
// # Inputs
//
//   - checker: Usually a *RemoteEngine.
//   - availability: Shared with the Facade that reads it.
//   - opts: Optional settings.
func NewProber(checker HealthChecker, availability *Availability, opts ...ProberOption) *Prober {
	p := &Prober{
		checker:      checker,
		availability: availability,
		timeout:      DefaultProbeTimeout,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe runs one availability check and returns the resulting state.
//
// # Description
//
// If a probe is already running, Probe waits for it and returns its
// result. The running probe uses the context of whichever caller started
// it.
func (p *Prober) Probe(ctx context.Context) AvailabilityState {
	v, _, _ := p.group.Do("probe", func() (any, error) {
		return p.probeOnce(ctx), nil
	})
	return v.(AvailabilityState)
}

func (p *Prober) probeOnce(ctx context.Context) AvailabilityState {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.checker.Health(probeCtx)
	if ctx.Err() != nil {
		p.logger.Debug("Probe abandoned", "error", ctx.Err())
		return p.availability.State()
	}

	state := AvailabilityAvailable
	if err != nil {
		state = AvailabilityUnavailable
	}
	p.metrics.RecordProbe(state == AvailabilityAvailable)

	prev := p.availability.Set(state)
	if prev == state {
		if err != nil {
			p.logger.Debug("Remote engine still unavailable", "error_kind", failureReason(err), "error", err)
		}
		return state
	}

	if err != nil {
		p.logger.Warn("Remote engine unavailable",
			"from", prev.String(),
			"error_kind", failureReason(err),
			"error", err,
		)
	} else {
		p.logger.Info("Remote engine available", "from", prev.String())
	}
	if p.onChange != nil {
		p.onChange(prev, state)
	}
	return state
}

// Run probes immediately, then every interval until ctx is done. With a
// non-positive interval it probes once and returns.
func (p *Prober) Run(ctx context.Context, interval time.Duration) {
	p.Probe(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
