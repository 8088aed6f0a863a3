// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/humanizer/pkg/ux"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
)

// newPrinter styles output only when stdout is a real terminal.
func newPrinter(cmd *cobra.Command) *ux.Printer {
	out := cmd.OutOrStdout()
	var f *os.File
	if file, ok := out.(*os.File); ok {
		f = file
	}
	return ux.NewPrinter(out, cmd.ErrOrStderr(), ux.DetectPersonality(f))
}

// transformReport is the --json form of one transformed input.
type transformReport struct {
	Source         string `json:"source"`
	Engine         string `json:"engine"`
	FallbackReason string `json:"fallback_reason,omitempty"`
	datatypes.TransformResponse
}

// sampleReport is the --json form of a sample.
type sampleReport struct {
	Engine         string `json:"engine"`
	FallbackReason string `json:"fallback_reason,omitempty"`
	datatypes.SampleResponse
}

// probeReport is the --json form of a probe.
type probeReport struct {
	RemoteURL    string `json:"remote_url"`
	Availability string `json:"availability"`
}

// writeJSON writes v as a single line.
func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// statisticsFields renders engine and counts for Printer.KeyValues.
func statisticsFields(engineName, fallbackReason string, stats datatypes.Statistics) []ux.Field {
	fields := []ux.Field{{Key: "Engine", Value: engineName}}
	if fallbackReason != "" {
		fields = append(fields, ux.Field{Key: "Fallback reason", Value: fallbackReason})
	}
	return append(fields,
		ux.Field{Key: "Words", Value: strconv.Itoa(stats.InputWords) + " " + string(ux.IconArrow) + " " + strconv.Itoa(stats.OutputWords)},
		ux.Field{Key: "Sentences", Value: strconv.Itoa(stats.InputSentences) + " " + string(ux.IconArrow) + " " + strconv.Itoa(stats.OutputSentences)},
	)
}
