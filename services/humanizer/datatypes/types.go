// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the values exchanged between the humanizer
// engines and their callers, plus the JSON shapes of the remote contract.
//
// # Description
//
// Two families of types live here:
//   - Domain values (TransformOptions, Statistics, TransformResult) that
//     the engines produce and the facade returns.
//   - Wire values (TransformRequest, TransformResponse, HealthResponse,
//     SampleResponse) matching the /api/* JSON contract with snake_case keys.
//
// Conversion helpers map between the two so neither the HTTP client nor
// the gin handlers hand-roll field copies.
package datatypes

import "strings"

// Intensity is the requested rewrite intensity. It is echoed back in
// results but does not influence the local engine.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// DefaultIntensity is applied when a request omits the field.
const DefaultIntensity = IntensityMedium

// DefaultStyle is applied when a request omits the field.
const DefaultStyle = "academic"

// Valid reports whether i is one of the three known intensities.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	default:
		return false
	}
}

// TransformOptions controls one transformation call.
//
// UsePassive and UseSynonyms gate the optional rewriting stages.
// PreserveStructure, Intensity and Style are pass-through fields: they
// are carried into TransformResult.OptionsUsed untouched.
type TransformOptions struct {
	UsePassive        bool
	UseSynonyms       bool
	PreserveStructure bool
	Intensity         Intensity
	Style             string
}

// WithDefaults fills empty Intensity and Style with their defaults.
func (o TransformOptions) WithDefaults() TransformOptions {
	if o.Intensity == "" {
		o.Intensity = DefaultIntensity
	}
	if strings.TrimSpace(o.Style) == "" {
		o.Style = DefaultStyle
	}
	return o
}

// Statistics holds before/after word and sentence counts.
type Statistics struct {
	InputWords      int
	InputSentences  int
	OutputWords     int
	OutputSentences int
}

// TransformResult is the outcome of a transformation.
type TransformResult struct {
	TransformedText string
	Statistics      Statistics
	OptionsUsed     TransformOptions
}

// =============================================================================
// Wire Types
// =============================================================================

// WireOptions is the snake_case form of TransformOptions.
type WireOptions struct {
	UsePassive        bool   `json:"use_passive"`
	UseSynonyms       bool   `json:"use_synonyms"`
	PreserveStructure bool   `json:"preserve_structure"`
	Intensity         string `json:"intensity"`
	Style             string `json:"style"`
}

// WireStatistics is the snake_case form of Statistics.
type WireStatistics struct {
	InputWords      int `json:"input_words"`
	InputSentences  int `json:"input_sentences"`
	OutputWords     int `json:"output_words"`
	OutputSentences int `json:"output_sentences"`
}

// TransformRequest is the body of POST /api/transform.
//
// Text is a pointer so the server can tell a missing field from an empty
// one; the two produce different error messages.
type TransformRequest struct {
	Text              *string `json:"text"`
	UsePassive        bool    `json:"use_passive"`
	UseSynonyms       bool    `json:"use_synonyms"`
	PreserveStructure bool    `json:"preserve_structure"`
	Intensity         string  `json:"intensity" binding:"omitempty,oneof=low medium high"`
	Style             string  `json:"style"`
}

// TransformResponse is the body returned by POST /api/transform.
//
// On success Success is true and Error is empty; on a logical failure
// Success is false and Error explains why.
type TransformResponse struct {
	Success         bool            `json:"success"`
	TransformedText string          `json:"transformed_text,omitempty"`
	Statistics      *WireStatistics `json:"statistics,omitempty"`
	OptionsUsed     *WireOptions    `json:"options_used,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /api/health.
//
// Only Status is part of the availability contract: the literal string
// "healthy" means available, anything else does not.
type HealthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version,omitempty"`
	Features []string `json:"features,omitempty"`
	Upstream string   `json:"upstream,omitempty"`
}

// StatusHealthy is the only HealthResponse.Status meaning "available".
const StatusHealthy = "healthy"

// SampleResponse is the body of GET /api/sample.
type SampleResponse struct {
	SampleText string `json:"sample_text"`
}

// =============================================================================
// Conversions
// =============================================================================

// ToWire converts options into their wire form.
func (o TransformOptions) ToWire() WireOptions {
	return WireOptions{
		UsePassive:        o.UsePassive,
		UseSynonyms:       o.UseSynonyms,
		PreserveStructure: o.PreserveStructure,
		Intensity:         string(o.Intensity),
		Style:             o.Style,
	}
}

// FromWire converts wire options back into TransformOptions.
func (w WireOptions) FromWire() TransformOptions {
	return TransformOptions{
		UsePassive:        w.UsePassive,
		UseSynonyms:       w.UseSynonyms,
		PreserveStructure: w.PreserveStructure,
		Intensity:         Intensity(w.Intensity),
		Style:             w.Style,
	}
}

// ToWire converts statistics into their wire form.
func (s Statistics) ToWire() WireStatistics {
	return WireStatistics{
		InputWords:      s.InputWords,
		InputSentences:  s.InputSentences,
		OutputWords:     s.OutputWords,
		OutputSentences: s.OutputSentences,
	}
}

// FromWire converts wire statistics back into Statistics.
func (w WireStatistics) FromWire() Statistics {
	return Statistics{
		InputWords:      w.InputWords,
		InputSentences:  w.InputSentences,
		OutputWords:     w.OutputWords,
		OutputSentences: w.OutputSentences,
	}
}

// Options extracts TransformOptions from a request body.
func (r TransformRequest) Options() TransformOptions {
	return TransformOptions{
		UsePassive:        r.UsePassive,
		UseSynonyms:       r.UseSynonyms,
		PreserveStructure: r.PreserveStructure,
		Intensity:         Intensity(r.Intensity),
		Style:             r.Style,
	}
}

// NewTransformRequest builds the request body sent to a remote engine.
func NewTransformRequest(text string, opts TransformOptions) TransformRequest {
	return TransformRequest{
		Text:              &text,
		UsePassive:        opts.UsePassive,
		UseSynonyms:       opts.UseSynonyms,
		PreserveStructure: opts.PreserveStructure,
		Intensity:         string(opts.Intensity),
		Style:             opts.Style,
	}
}

// NewTransformResponse builds a successful response body from a result.
func NewTransformResponse(result TransformResult) TransformResponse {
	stats := result.Statistics.ToWire()
	opts := result.OptionsUsed.ToWire()
	return TransformResponse{
		Success:         true,
		TransformedText: result.TransformedText,
		Statistics:      &stats,
		OptionsUsed:     &opts,
	}
}
