// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements the two execution paths of the humanizer and
// the failover policy that chooses between them.
//
// # Description
//
// A Port is anything that can transform text and hand out a sample:
//
//   - LocalEngine: the in-process rewriting pipeline. Never fails.
//   - RemoteEngine: an HTTP client for the /api/* contract.
//
// The Facade composes a primary Port (normally remote) with a fallback Port
// (normally local). It consults an Availability value written by the Prober
// and, optionally, a circuit breaker that provides a cool-down after
// repeated per-call failures. Every remote failure is logged and replaced
// by a fallback result; callers of the Facade never see an error.
//
// # Architecture
//
//	caller ──► Facade ──► primary (RemoteEngine) ──✗──┐
//	              │                                   │
//	              └──────► fallback (LocalEngine) ◄───┘
//	                ▲
//	   Prober ──► Availability
package engine

import (
	"context"

	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
)

// Engine names reported in logs, metrics and response headers.
const (
	EngineLocal  = "local"
	EngineRemote = "remote"
)

// Port is the transform/sample contract shared by every engine.
type Port interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Transform rewrites text according to opts.
	Transform(ctx context.Context, text string, opts datatypes.TransformOptions) (datatypes.TransformResult, error)

	// Sample returns a sample input text.
	Sample(ctx context.Context) (string, error)
}
