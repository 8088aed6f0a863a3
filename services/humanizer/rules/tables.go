// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules holds the static rule tables used by the local engine.
//
// # Description
//
// Every table is an ordered slice, never a map: the rewriting stages
// apply rules sequentially and the order decides which rule gets the
// first chance to fire and which substitutions compound. The tables are
// process-lifetime constants and every accessor returns a fresh copy.
package rules

import "slices"

// Pair is one key→replacement rule.
type Pair struct {
	Key         string
	Replacement string
}

// contractions maps contracted forms to their expansions.
var contractions = []Pair{
	{"don't", "do not"}, {"doesn't", "does not"}, {"didn't", "did not"},
	{"won't", "will not"}, {"can't", "cannot"}, {"couldn't", "could not"},
	{"wouldn't", "would not"}, {"shouldn't", "should not"}, {"mustn't", "must not"},
	{"isn't", "is not"}, {"aren't", "are not"}, {"wasn't", "was not"},
	{"weren't", "were not"}, {"hasn't", "has not"}, {"haven't", "have not"},
	{"hadn't", "had not"},
	{"I'm", "I am"}, {"you're", "you are"}, {"he's", "he is"}, {"she's", "she is"},
	{"we're", "we are"}, {"they're", "they are"}, {"I'll", "I will"},
	{"you'll", "you will"}, {"he'll", "he will"}, {"she'll", "she will"},
	{"we'll", "we will"}, {"they'll", "they will"}, {"I've", "I have"},
	{"you've", "you have"}, {"we've", "we have"}, {"they've", "they have"},
	{"I'd", "I would"}, {"you'd", "you would"}, {"he'd", "he would"},
	{"she'd", "she would"}, {"we'd", "we would"}, {"they'd", "they would"},
	{"it's", "it is"}, {"that's", "that is"}, {"there's", "there is"},
	{"here's", "here is"}, {"what's", "what is"}, {"who's", "who is"},
	{"where's", "where is"}, {"when's", "when is"}, {"why's", "why is"},
	{"how's", "how is"},
}

var transitions = []string{
	"Moreover,", "Additionally,", "Furthermore,", "Hence,",
	"Therefore,", "Consequently,", "Nonetheless,", "Nevertheless,",
}

var synonyms = []Pair{
	{"good", "excellent"}, {"bad", "poor"}, {"big", "significant"}, {"small", "minimal"},
	{"important", "crucial"}, {"easy", "straightforward"}, {"hard", "challenging"},
	{"help", "assist"}, {"use", "utilize"}, {"get", "obtain"}, {"make", "create"},
	{"show", "demonstrate"}, {"tell", "inform"}, {"ask", "inquire"}, {"try", "attempt"},
	{"start", "commence"}, {"end", "conclude"}, {"find", "discover"}, {"know", "understand"},
}

// passiveRules are applied together, in this order, to a chunk that wins
// its passive-voice trial.
var passiveRules = []Pair{
	{"I do", "It is done by me"},
	{"we can", "it can be done by us"},
	{"you should", "it should be done by you"},
	{"they will", "it will be done by them"},
}

var sampleTexts = []string{
	"I don't think this approach will work. It's not good enough for our needs. We can't implement it without proper planning. The team needs to understand the requirements better before we proceed.",
	"You're right about the issue. We should fix it as soon as possible. It's important to get this done quickly. Let me know if you need any help with the implementation.",
	"The project is going well. We've made good progress this week. The team is working hard and we're on track to meet our deadlines. I think we can finish everything on time.",
}

// Contractions returns the contraction→expansion table in authored order.
func Contractions() []Pair { return slices.Clone(contractions) }

// Transitions returns the transition phrases in authored order.
func Transitions() []string { return slices.Clone(transitions) }

// Synonyms returns the word→synonym table in authored order.
func Synonyms() []Pair { return slices.Clone(synonyms) }

// PassiveRules returns the four passive-voice phrase rules.
func PassiveRules() []Pair { return slices.Clone(passiveRules) }

// SampleTexts returns the canned sample texts.
func SampleTexts() []string { return slices.Clone(sampleTexts) }
