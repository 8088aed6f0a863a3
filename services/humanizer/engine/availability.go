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
	"fmt"
	"sync/atomic"
)

// AvailabilityState is the believed reachability of the remote engine.
//
// # State Diagram
//
//	UNKNOWN ──probe ok──► AVAILABLE ◄──probe ok──┐
//	   │                      │                  │
//	   └──probe failed──► UNAVAILABLE ◄──────────┘
//	                          probe failed
//
// Only probes move the state. A failed transform or sample call leaves it
// untouched; the optional circuit breaker handles per-call cool-down.
type AvailabilityState int32

const (
	// AvailabilityUnknown is the state before the first probe completes.
	AvailabilityUnknown AvailabilityState = iota

	// AvailabilityAvailable means the last probe saw status "healthy".
	AvailabilityAvailable

	// AvailabilityUnavailable means the last probe failed.
	AvailabilityUnavailable
)

// String returns a human-readable state name.
func (s AvailabilityState) String() string {
	switch s {
	case AvailabilityUnknown:
		return "UNKNOWN"
	case AvailabilityAvailable:
		return "AVAILABLE"
	case AvailabilityUnavailable:
		return "UNAVAILABLE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(s))
	}
}

// Availability holds the current AvailabilityState.
//
// It is owned by the Facade and shared with the Prober; a value rather
// than a package global so tests can drive routing directly.
//
// # Thread Safety
//
// Availability is safe for concurrent use.
type Availability struct {
	state atomic.Int32
}

// NewAvailability returns an Availability in the Unknown state.
func NewAvailability() *Availability {
	return &Availability{}
}

// State returns the current state.
func (a *Availability) State() AvailabilityState {
	return AvailabilityState(a.state.Load())
}

// Set stores s and returns the previous state.
func (a *Availability) Set(s AvailabilityState) AvailabilityState {
	return AvailabilityState(a.state.Swap(int32(s)))
}
