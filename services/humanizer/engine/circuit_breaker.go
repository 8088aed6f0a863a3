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
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitState represents the state of the remote cool-down breaker.
//
// # State Diagram
//
//	   ┌─────────────────────────────────────┐
//	   │                                     │
//	   ▼                                     │
//	CLOSED ──[failure threshold]──► OPEN ───┘
//	   ▲                              │
//	   │                              │
//	   └───[success]◄── HALF_OPEN ◄──┘
//	                    [open timeout]
type CircuitState int

const (
	// CircuitClosed lets remote calls through.
	CircuitClosed CircuitState = iota

	// CircuitOpen skips the remote engine until OpenTimeout elapses.
	CircuitOpen

	// CircuitHalfOpen lets calls through to test whether the remote recovered.
	CircuitHalfOpen
)

// String returns a human-readable state name.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// ErrCircuitOpen is returned when the breaker skips the remote engine.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures the per-call cool-down.
//
// # Example
//
//	config := CircuitBreakerConfig{
//	    FailureThreshold: 3,                // Skip remote after 3 failures in a row
//	    SuccessThreshold: 1,                // One good call closes it again
//	    OpenTimeout:      30 * time.Second, // Cool-down window
//	}
type CircuitBreakerConfig struct {
	// FailureThreshold is consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is consecutive half-open successes before closing.
	// Default: 2
	SuccessThreshold int

	// OpenTimeout is the cool-down before a half-open trial.
	// Default: 30 seconds
	OpenTimeout time.Duration

	// OnStateChange is called after a transition, outside the lock.
	OnStateChange func(from, to CircuitState)

	// IsExcluded reports errors that count as neither failure nor
	// success. Default: none
	IsExcluded func(err error) bool

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// DefaultCircuitBreakerConfig returns the default thresholds.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker stops the facade from paying remote latency on every
// call while the remote engine keeps failing.
//
// # Thread Safety
//
// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	config      CircuitBreakerConfig
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	mu          sync.Mutex
}

// NewCircuitBreaker creates a breaker in the closed state. Zero-valued
// config fields take their defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = defaults.SuccessThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaults.OpenTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
//
// # Outputs
//
//   - error: ErrCircuitOpen if the call was skipped, else fn's error.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	allowed, from, to := cb.allowRequest()
	cb.notify(from, to)
	if !allowed {
		return ErrCircuitOpen
	}

	err := fn()
	cb.notify(cb.recordResult(err))
	return err
}

func (cb *CircuitBreaker) allowRequest() (bool, CircuitState, CircuitState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true, cb.state, cb.state
	case CircuitOpen:
		if cb.config.Now().Sub(cb.lastFailure) >= cb.config.OpenTimeout {
			from := cb.transitionTo(CircuitHalfOpen)
			return true, from, CircuitHalfOpen
		}
		return false, cb.state, cb.state
	default:
		return false, cb.state, cb.state
	}
}

func (cb *CircuitBreaker) recordResult(err error) (CircuitState, CircuitState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	from := cb.state
	if err != nil && cb.config.IsExcluded != nil && cb.config.IsExcluded(err) {
		return from, from
	}
	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailure = cb.config.Now()
		if cb.state == CircuitHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(CircuitOpen)
		}
		return from, cb.state
	}

	cb.successes++
	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		if cb.successes >= cb.config.SuccessThreshold {
			cb.failures = 0
			cb.transitionTo(CircuitClosed)
		}
	}
	return from, cb.state
}

// transitionTo must be called with mu held. It returns the prior state.
func (cb *CircuitBreaker) transitionTo(state CircuitState) CircuitState {
	old := cb.state
	cb.state = state
	if state != CircuitHalfOpen {
		cb.successes = 0
	}
	return old
}

func (cb *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the circuit closed, e.g. after a healthy probe.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	old := cb.state
	cb.state = CircuitClosed
	cb.failures = 0
	cb.successes = 0
	cb.mu.Unlock()

	cb.notify(old, CircuitClosed)
}
