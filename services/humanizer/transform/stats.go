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

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
)

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// WordCount returns the number of maximal non-whitespace runs in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SentenceCount splits text on runs of '.', '!' and '?' and counts the
// segments that are non-empty after trimming whitespace.
//
// # Examples
//
//	SentenceCount("Hi. Bye!") // 2
//	SentenceCount("...")      // 0
func SentenceCount(text string) int {
	count := 0
	for _, segment := range sentenceTerminators.Split(text, -1) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	return count
}

// ComputeStatistics derives statistics from the literal input and output.
func ComputeStatistics(input, output string) datatypes.Statistics {
	return datatypes.Statistics{
		InputWords:      WordCount(input),
		InputSentences:  SentenceCount(input),
		OutputWords:     WordCount(output),
		OutputSentences: SentenceCount(output),
	}
}
