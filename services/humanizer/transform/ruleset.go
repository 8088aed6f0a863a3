// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transform implements the rewriting stages of the local engine.
//
// # Description
//
// Four independent stages turn machine-sounding prose into something
// less uniform:
//
//   - ExpandContractions: "don't" -> "do not" (deterministic)
//   - InjectTransitions: prepend "Moreover," style phrases at ". " boundaries
//   - RewritePassive: fixed active->passive phrase swaps per chunk
//   - SubstituteSynonyms: word-level replacements gated per table entry
//
// Each stage is a pure function of its input text, the compiled Ruleset,
// and (for the randomized stages) an injected Rand. The package also
// provides the word and sentence counters used for statistics.
//
// # Matching Semantics
//
// All rules match case-insensitively on ASCII word boundaries and replace
// with the literal replacement string, regardless of the case of the
// matched text. Rules are applied one after another over the evolving
// text, so the output of an earlier rule is visible to later ones.
package transform

import (
	"regexp"
	"strings"
	"sync"

	"github.com/AleutianAI/humanizer/services/humanizer/rules"
)

// ChunkDelimiter is the literal separator the chunked stages split on.
// It is not a sentence splitter: "e.g. this" counts as a boundary.
const ChunkDelimiter = ". "

const (
	// TransitionProbability is the per-chunk chance of a transition phrase.
	TransitionProbability = 0.3

	// SynonymProbability is the per-table-entry chance a synonym fires.
	SynonymProbability = 0.3

	// PassiveProbability is the per-chunk chance the passive rules apply.
	PassiveProbability = 0.2
)

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func (c compiledRule) apply(text string) string {
	return c.pattern.ReplaceAllLiteralString(text, c.replacement)
}

// Ruleset is a compiled, read-only set of rule tables.
//
// A Ruleset is safe for concurrent use; compiled regular expressions are
// immutable and the stages never modify the tables.
type Ruleset struct {
	contractions []compiledRule
	synonyms     []compiledRule
	passive      []compiledRule
	transitions  []string
}

// NewRuleset compiles the given tables, preserving their order.
func NewRuleset(contractions, synonyms, passive []rules.Pair, transitions []string) *Ruleset {
	return &Ruleset{
		contractions: compileRules(contractions),
		synonyms:     compileRules(synonyms),
		passive:      compileRules(passive),
		transitions:  append([]string(nil), transitions...),
	}
}

var defaultRuleset = sync.OnceValue(func() *Ruleset {
	return NewRuleset(rules.Contractions(), rules.Synonyms(), rules.PassiveRules(), rules.Transitions())
})

// DefaultRuleset returns the Ruleset compiled from the built-in tables.
func DefaultRuleset() *Ruleset {
	return defaultRuleset()
}

func compileRules(pairs []rules.Pair) []compiledRule {
	compiled := make([]compiledRule, 0, len(pairs))
	for _, p := range pairs {
		compiled = append(compiled, compiledRule{
			pattern:     wordPattern(p.Key),
			replacement: p.Replacement,
		})
	}
	return compiled
}

// wordPattern matches key case-insensitively as a whole word or phrase.
func wordPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
}

// SplitChunks splits text on ChunkDelimiter. The result always has at
// least one element.
func SplitChunks(text string) []string {
	return strings.Split(text, ChunkDelimiter)
}

// JoinChunks is the inverse of SplitChunks.
func JoinChunks(chunks []string) string {
	return strings.Join(chunks, ChunkDelimiter)
}
