// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import "math/rand/v2"

// Rand is the randomness capability consumed by the rewriting stages.
//
// # Description
//
// Stages draw Bernoulli trials through Float64 and pick list entries
// through IntN. *rand.Rand from math/rand/v2 satisfies the interface.
// Tests substitute NeverFire, AlwaysFire or ScriptedRand to force
// deterministic outcomes.
//
// # Thread Safety
//
// Implementations are not required to be safe for concurrent use. The
// local engine creates a fresh Rand per call so concurrent calls never
// share random state.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64

	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

// Bernoulli draws one trial that succeeds with probability p.
func Bernoulli(r Rand, p float64) bool {
	return r.Float64() < p
}

// NewSeededRand returns a PCG-backed Rand with a reproducible stream.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRand returns a Rand seeded from the runtime's random source.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// =============================================================================
// Deterministic Sources
// =============================================================================

type constRand struct {
	f float64
}

func (c constRand) Float64() float64 { return c.f }
func (c constRand) IntN(int) int     { return 0 }

// NeverFire returns a Rand whose Bernoulli trials never succeed.
func NeverFire() Rand { return constRand{f: 1} }

// AlwaysFire returns a Rand whose Bernoulli trials always succeed and
// whose IntN always picks the first entry.
func AlwaysFire() Rand { return constRand{f: 0} }

// ScriptedRand replays fixed sequences of draws.
//
// Floats feeds Float64 and Ints feeds IntN, each in order. An exhausted
// Floats sequence returns 1 (the trial fails) and an exhausted Ints
// sequence returns 0. Ints values are reduced modulo n.
//
// ScriptedRand is not safe for concurrent use.
type ScriptedRand struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

// Float64 returns the next scripted float.
func (s *ScriptedRand) Float64() float64 {
	if s.fi >= len(s.Floats) {
		return 1
	}
	f := s.Floats[s.fi]
	s.fi++
	return f
}

// IntN returns the next scripted int modulo n.
func (s *ScriptedRand) IntN(n int) int {
	if s.ii >= len(s.Ints) || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii] % n
	s.ii++
	if v < 0 {
		v += n
	}
	return v
}

// FloatDraws reports how many Float64 values have been consumed.
func (s *ScriptedRand) FloatDraws() int { return s.fi }
