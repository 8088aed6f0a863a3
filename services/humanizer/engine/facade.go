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
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
	"github.com/AleutianAI/humanizer/services/humanizer/rules"
	"github.com/AleutianAI/humanizer/services/humanizer/transform"
)

// Outcome is a transform result plus how it was produced.
type Outcome struct {
	// Result is the transformation output.
	Result datatypes.TransformResult

	// Engine names the port that produced Result.
	Engine string

	// FallbackReason is the failure label when the primary was tried and
	// failed, else empty.
	FallbackReason string
}

// SampleOutcome is a sample text plus how it was produced.
type SampleOutcome struct {
	Text           string
	Engine         string
	FallbackReason string
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithAvailability shares an existing Availability, typically the one a
// Prober writes to.
func WithAvailability(a *Availability) FacadeOption {
	return func(f *Facade) {
		if a != nil {
			f.availability = a
		}
	}
}

// WithCooldown enables the per-call circuit breaker.
func WithCooldown(cfg CircuitBreakerConfig) FacadeOption {
	return func(f *Facade) {
		f.SetCooldown(&cfg)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) FacadeOption {
	return func(f *Facade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) FacadeOption {
	return func(f *Facade) {
		f.metrics = m
	}
}

// Facade chooses between a primary and a fallback Port.
//
// # Description
//
// The primary is tried only while the Availability reads Available and the
// optional cool-down breaker lets the call through. Any primary failure is
// logged at Warn and answered by the fallback. Per-call failures never
// write the Availability; only the Prober does.
//
// With a nil primary every call goes straight to the fallback.
//
// # Thread Safety
//
// Facade is safe for concurrent use. SetCooldown may be called while
// requests are in flight.
type Facade struct {
	primary      Port
	fallback     Port
	availability *Availability
	breaker      atomic.Pointer[CircuitBreaker]
	logger       *logging.Logger
	metrics      *observability.Metrics
}

// NewFacade creates a Facade.
//
// # Inputs
//
//   - primary: Preferred port, usually a *RemoteEngine. May be nil.
//   - fallback: Port used when the primary is skipped or fails. nil means
//     a default LocalEngine.
//   - opts: Optional settings.
//
// # Examples
//
//	availability := engine.NewAvailability()
//	facade := engine.NewFacade(remote, engine.NewLocalEngine(),
//	    engine.WithAvailability(availability),
//	    engine.WithLogger(logger),
//	)
//	go engine.NewProber(remote, availability).Run(ctx, 30*time.Second)
//	result := facade.Transform(ctx, "I don't know.", datatypes.TransformOptions{})
func NewFacade(primary, fallback Port, opts ...FacadeOption) *Facade {
	if fallback == nil {
		fallback = NewLocalEngine()
	}
	f := &Facade{
		primary:      primary,
		fallback:     fallback,
		availability: NewAvailability(),
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Availability returns the Availability the facade reads.
func (f *Facade) Availability() *Availability {
	return f.availability
}

// HasPrimary reports whether a primary port is configured.
func (f *Facade) HasPrimary() bool {
	return f.primary != nil
}

// SetCooldown replaces the circuit breaker. nil disables the cool-down.
func (f *Facade) SetCooldown(cfg *CircuitBreakerConfig) {
	if cfg == nil {
		f.breaker.Store(nil)
		return
	}
	c := *cfg
	if c.IsExcluded == nil {
		c.IsExcluded = isCallerCancellation
	}
	userHook := c.OnStateChange
	c.OnStateChange = func(from, to CircuitState) {
		f.logger.Info("Remote cool-down state changed", "from", from.String(), "to", to.String())
		if userHook != nil {
			userHook(from, to)
		}
	}
	f.breaker.Store(NewCircuitBreaker(c))
}

// ResetCooldown closes the circuit breaker, if one is configured.
func (f *Facade) ResetCooldown() {
	if cb := f.breaker.Load(); cb != nil {
		cb.Reset()
	}
}

// CooldownState returns the breaker state and whether a breaker exists.
func (f *Facade) CooldownState() (CircuitState, bool) {
	cb := f.breaker.Load()
	if cb == nil {
		return CircuitClosed, false
	}
	return cb.State(), true
}

// Transform returns the transformation of text. It never fails.
func (f *Facade) Transform(ctx context.Context, text string, opts datatypes.TransformOptions) datatypes.TransformResult {
	return f.Route(ctx, text, opts).Result
}

// Route is Transform plus the engine that answered.
//
// # Outputs
//
//   - Outcome: Always carries a usable Result.
func (f *Facade) Route(ctx context.Context, text string, opts datatypes.TransformOptions) Outcome {
	ctx, span := tracer.Start(ctx, "Facade.Transform")
	defer span.End()

	var reason string
	if f.usePrimary() {
		start := time.Now()
		var result datatypes.TransformResult
		err := f.callPrimary(func() error {
			var callErr error
			result, callErr = f.primary.Transform(ctx, text, opts)
			return callErr
		})
		if err == nil {
			f.metrics.RecordTransform(f.primary.Name(), time.Since(start))
			span.SetAttributes(attribute.String("humanizer.engine", f.primary.Name()))
			return Outcome{Result: result, Engine: f.primary.Name()}
		}
		reason = f.recordFallback("transform", err)
		span.SetAttributes(attribute.String("humanizer.fallback_reason", reason))
	}

	start := time.Now()
	result, err := f.fallback.Transform(ctx, text, opts)
	if err != nil {
		f.logger.Error("Fallback engine failed, returning input unchanged",
			"engine", f.fallback.Name(),
			"error", err,
		)
		result = datatypes.TransformResult{
			TransformedText: text,
			Statistics:      transform.ComputeStatistics(text, text),
			OptionsUsed:     opts,
		}
	}
	f.metrics.RecordTransform(f.fallback.Name(), time.Since(start))
	span.SetAttributes(attribute.String("humanizer.engine", f.fallback.Name()))
	return Outcome{Result: result, Engine: f.fallback.Name(), FallbackReason: reason}
}

// Sample returns a sample text. It never fails.
func (f *Facade) Sample(ctx context.Context) string {
	return f.RouteSample(ctx).Text
}

// RouteSample is Sample plus the engine that answered.
func (f *Facade) RouteSample(ctx context.Context) SampleOutcome {
	ctx, span := tracer.Start(ctx, "Facade.Sample")
	defer span.End()

	var reason string
	if f.usePrimary() {
		var text string
		err := f.callPrimary(func() error {
			var callErr error
			text, callErr = f.primary.Sample(ctx)
			return callErr
		})
		if err == nil {
			span.SetAttributes(attribute.String("humanizer.engine", f.primary.Name()))
			return SampleOutcome{Text: text, Engine: f.primary.Name()}
		}
		reason = f.recordFallback("sample", err)
	}

	text, err := f.fallback.Sample(ctx)
	if err != nil || text == "" {
		f.logger.Error("Fallback engine failed to sample, using built-in text",
			"engine", f.fallback.Name(),
			"error", err,
		)
		text = rules.SampleTexts()[0]
	}
	span.SetAttributes(attribute.String("humanizer.engine", f.fallback.Name()))
	return SampleOutcome{Text: text, Engine: f.fallback.Name(), FallbackReason: reason}
}

func (f *Facade) usePrimary() bool {
	return f.primary != nil && f.availability.State() == AvailabilityAvailable
}

func (f *Facade) callPrimary(fn func() error) error {
	if cb := f.breaker.Load(); cb != nil {
		return cb.Execute(fn)
	}
	return fn()
}

// recordFallback logs and counts a primary failure and returns its label.
func (f *Facade) recordFallback(op string, err error) string {
	reason := failureReason(err)
	f.metrics.RecordFallback(op, reason)
	if reason == "CIRCUIT_OPEN" {
		f.logger.Debug("Remote engine in cool-down, using fallback", "operation", op)
		return reason
	}
	f.logger.Warn("Remote engine failed, using fallback",
		"operation", op,
		"error_kind", reason,
		"error", err,
	)
	return reason
}
