// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers serves the /api/* contract over gin.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
)

// Response headers describing how a request was served.
const (
	HeaderEngine         = "X-Humanizer-Engine"
	HeaderFallbackReason = "X-Humanizer-Fallback-Reason"
)

// Error messages returned with 400.
const (
	ErrMsgNoText       = "No text provided"
	ErrMsgEmptyText    = "Empty text provided"
	ErrMsgInvalidBody  = "Invalid request body"
	ErrMsgBadIntensity = "Invalid intensity: must be one of low, medium, high"
)

// Features lists the rewriting stages advertised by /api/health.
var Features = []string{"contractions", "transitions", "synonyms", "passive_voice"}

var tracer = otel.Tracer("humanizer.handlers")

// Transformer is the slice of *engine.Facade the handlers need.
type Transformer interface {
	Route(ctx context.Context, text string, opts datatypes.TransformOptions) engine.Outcome
	RouteSample(ctx context.Context) engine.SampleOutcome
	Availability() *engine.Availability
	HasPrimary() bool
}

// HandleHealth serves GET /api/health.
//
// The server itself is always healthy: it can answer locally whatever the
// upstream does. When proxying, upstream carries the believed upstream
// availability.
func HandleHealth(t Transformer, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := datatypes.HealthResponse{
			Status:   datatypes.StatusHealthy,
			Version:  version,
			Features: Features,
		}
		if t.HasPrimary() {
			resp.Upstream = strings.ToLower(t.Availability().State().String())
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleTransform serves POST /api/transform.
//
// # Description
//
// Validates the body, trims the text, applies default intensity and style,
// and routes through the Transformer. Validation failures return 400 with
// an {"error": ...} body; every accepted request returns 200 since the
// Transformer cannot fail.
//
// # Inputs
//
//   - t: Usually an *engine.Facade.
//   - logger: Request logger. nil means logging.Default().
func HandleTransform(t Transformer, logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.Default()
	}
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "handlers.HandleTransform")
		defer span.End()

		var req datatypes.TransformRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			msg := bindErrorMessage(err)
			logger.Debug("Rejected transform request", "reason", msg, "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: msg})
			return
		}
		if req.Text == nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: ErrMsgNoText})
			return
		}
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: ErrMsgEmptyText})
			return
		}

		opts := req.Options().WithDefaults()
		span.SetAttributes(
			attribute.Int("humanizer.text_length", len(text)),
			attribute.Bool("humanizer.use_passive", opts.UsePassive),
			attribute.Bool("humanizer.use_synonyms", opts.UseSynonyms),
		)

		outcome := t.Route(ctx, text, opts)
		setEngineHeaders(c, outcome.Engine, outcome.FallbackReason)

		logger.Debug("Transform served",
			"engine", outcome.Engine,
			"input_words", outcome.Result.Statistics.InputWords,
			"output_words", outcome.Result.Statistics.OutputWords,
		)
		c.JSON(http.StatusOK, datatypes.NewTransformResponse(outcome.Result))
	}
}

// HandleSample serves GET /api/sample.
func HandleSample(t Transformer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "handlers.HandleSample")
		defer span.End()

		outcome := t.RouteSample(ctx)
		setEngineHeaders(c, outcome.Engine, outcome.FallbackReason)
		c.JSON(http.StatusOK, datatypes.SampleResponse{SampleText: outcome.Text})
	}
}

func setEngineHeaders(c *gin.Context, engineName, reason string) {
	c.Header(HeaderEngine, engineName)
	if reason != "" {
		c.Header(HeaderFallbackReason, reason)
	}
}

// bindErrorMessage maps a ShouldBindJSON failure to a client message.
// An empty body counts as "no text".
func bindErrorMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return ErrMsgNoText
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Intensity" {
				return ErrMsgBadIntensity
			}
		}
	}
	return ErrMsgInvalidBody
}
