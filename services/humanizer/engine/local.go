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

	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/rules"
	"github.com/AleutianAI/humanizer/services/humanizer/transform"
)

// LocalOption configures a LocalEngine.
type LocalOption func(*LocalEngine)

// WithRandSource sets the factory called once per Transform or Sample
// call. Each call gets its own Rand, so concurrent calls never share one.
func WithRandSource(newRand func() transform.Rand) LocalOption {
	return func(e *LocalEngine) {
		if newRand != nil {
			e.newRand = newRand
		}
	}
}

// WithSeed makes every call draw from a fresh PCG seeded with seed, so
// the same input always produces the same output.
func WithSeed(seed uint64) LocalOption {
	return WithRandSource(func() transform.Rand {
		return transform.NewSeededRand(seed)
	})
}

// WithRuleset replaces the default rule tables.
func WithRuleset(rs *transform.Ruleset) LocalOption {
	return func(e *LocalEngine) {
		if rs != nil {
			e.rules = rs
		}
	}
}

// WithSamples replaces the canned sample texts. An empty slice is ignored.
func WithSamples(samples []string) LocalOption {
	return func(e *LocalEngine) {
		if len(samples) > 0 {
			e.samples = append([]string(nil), samples...)
		}
	}
}

// LocalEngine is the in-process rewriting pipeline.
//
// # Description
//
// Runs contraction expansion, transition injection, optional passive
// rewriting and optional synonym substitution, then recomputes statistics.
// It implements Port and never returns an error.
//
// # Thread Safety
//
// LocalEngine is immutable after construction and safe for concurrent use
// as long as the Rand factory returns a distinct value per call.
type LocalEngine struct {
	rules   *transform.Ruleset
	newRand func() transform.Rand
	samples []string
}

// NewLocalEngine creates a LocalEngine with the default rule tables and a
// randomly seeded source per call.
//
// # Examples
//
//	local := engine.NewLocalEngine()
//	result := local.Humanize("I don't think so.", datatypes.TransformOptions{})
//
//	// Reproducible output:
//	seeded := engine.NewLocalEngine(engine.WithSeed(42))
func NewLocalEngine(opts ...LocalOption) *LocalEngine {
	e := &LocalEngine{
		rules:   transform.DefaultRuleset(),
		newRand: transform.NewRand,
		samples: rules.SampleTexts(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Port.
func (e *LocalEngine) Name() string {
	return EngineLocal
}

// Humanize rewrites text with a fresh Rand from the engine's factory.
func (e *LocalEngine) Humanize(text string, opts datatypes.TransformOptions) datatypes.TransformResult {
	return e.HumanizeWith(text, opts, e.newRand())
}

// HumanizeWith rewrites text drawing every random decision from r.
//
// # Description
//
// Stage order is fixed:
//
//  1. Expand contractions (always).
//  2. Inject transitions, only when the text has more than one ". " chunk.
//  3. Rewrite passive phrases, if opts.UsePassive.
//  4. Substitute synonyms, if opts.UseSynonyms.
//
// Input statistics are taken from the original text and output statistics
// from the final text. opts is echoed into OptionsUsed as given.
//
// # Inputs
//
//   - text: Any string, including empty or whitespace-only.
//   - opts: Stage gates and pass-through fields.
//   - r: Randomness source. Not retained after the call.
//
// # Outputs
//
//   - datatypes.TransformResult: Always populated.
func (e *LocalEngine) HumanizeWith(text string, opts datatypes.TransformOptions, r transform.Rand) datatypes.TransformResult {
	out := e.rules.ExpandContractions(text)

	if len(transform.SplitChunks(out)) > 1 {
		out = e.rules.InjectTransitions(out, r)
	}
	if opts.UsePassive {
		out = e.rules.RewritePassive(out, r)
	}
	if opts.UseSynonyms {
		out = e.rules.SubstituteSynonyms(out, r)
	}

	return datatypes.TransformResult{
		TransformedText: out,
		Statistics:      transform.ComputeStatistics(text, out),
		OptionsUsed:     opts,
	}
}

// Transform implements Port. The error is always nil; a cancelled context
// does not stop a local transform since it never blocks.
func (e *LocalEngine) Transform(_ context.Context, text string, opts datatypes.TransformOptions) (datatypes.TransformResult, error) {
	return e.Humanize(text, opts), nil
}

// Sample implements Port. The error is always nil.
func (e *LocalEngine) Sample(_ context.Context) (string, error) {
	return e.PickSample(e.newRand()), nil
}

// PickSample returns one of the canned samples, chosen uniformly by r.
func (e *LocalEngine) PickSample(r transform.Rand) string {
	return e.samples[r.IntN(len(e.samples))]
}

// Samples returns a copy of the canned sample texts.
func (e *LocalEngine) Samples() []string {
	return append([]string(nil), e.samples...)
}
