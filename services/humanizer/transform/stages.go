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

// ExpandContractions replaces every contraction in table order.
//
// # Description
//
// For each (contraction, expansion) pair, every case-insensitive whole-word
// occurrence is replaced with the expansion's fixed casing, so "DON'T"
// becomes "do not". Substitution is sequential: rule N sees the output of
// rules 0..N-1.
//
// # Examples
//
//	rs.ExpandContractions("I don't know.") // "I do not know."
func (rs *Ruleset) ExpandContractions(text string) string {
	if text == "" {
		return text
	}
	for _, rule := range rs.contractions {
		text = rule.apply(text)
	}
	return text
}

// InjectTransitions prepends transition phrases at chunk boundaries.
//
// # Description
//
// Splits on ". " and, for every chunk after the first, draws one
// Bernoulli(TransitionProbability) trial. On success a uniformly chosen
// transition and a single space are prepended to the chunk. Text with a
// single chunk is returned unchanged and consumes no draws.
//
// # Outputs
//
//   - string: Text with the same number of ". "-delimited chunks.
func (rs *Ruleset) InjectTransitions(text string, r Rand) string {
	chunks := SplitChunks(text)
	if len(chunks) <= 1 || len(rs.transitions) == 0 {
		return text
	}
	for i := 1; i < len(chunks); i++ {
		if Bernoulli(r, TransitionProbability) {
			transition := rs.transitions[r.IntN(len(rs.transitions))]
			chunks[i] = transition + " " + chunks[i]
		}
	}
	return JoinChunks(chunks)
}

// SubstituteSynonyms swaps words for synonyms, one trial per table entry.
//
// # Description
//
// Each (word, synonym) pair draws exactly one Bernoulli(SynonymProbability)
// trial whether or not the word occurs. When the trial succeeds every
// case-insensitive whole-word occurrence in the current text is replaced.
// Because the text evolves, a synonym introduced by an earlier entry can be
// replaced again by a later one.
func (rs *Ruleset) SubstituteSynonyms(text string, r Rand) string {
	for _, rule := range rs.synonyms {
		if Bernoulli(r, SynonymProbability) {
			text = rule.apply(text)
		}
	}
	return text
}

// RewritePassive applies the passive-voice phrase rules per chunk.
//
// # Description
//
// Splits on ". " and draws one Bernoulli(PassiveProbability) trial per
// chunk. A chunk that wins its trial gets all passive rules applied in
// order ("I do", "we can", "you should", "they will"); the others are
// left untouched.
func (rs *Ruleset) RewritePassive(text string, r Rand) string {
	chunks := SplitChunks(text)
	for i, chunk := range chunks {
		if !Bernoulli(r, PassiveProbability) {
			continue
		}
		for _, rule := range rs.passive {
			chunk = rule.apply(chunk)
		}
		chunks[i] = chunk
	}
	return JoinChunks(chunks)
}
