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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
)

const (
	// DefaultRemoteTimeout bounds each remote call.
	DefaultRemoteTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a remote body is read.
	maxResponseBytes = 4 << 20

	// maxErrorSnippet caps the body excerpt kept in a RemoteError.
	maxErrorSnippet = 256
)

const (
	pathHealth    = "/api/health"
	pathTransform = "/api/transform"
	pathSample    = "/api/sample"
)

var tracer = otel.Tracer("humanizer.engine")

// HTTPDoer is the subset of *http.Client used by RemoteEngine.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteConfig configures a RemoteEngine.
type RemoteConfig struct {
	// BaseURL is the remote service root, e.g. "http://localhost:5000".
	BaseURL string

	// Timeout bounds every call. Default: DefaultRemoteTimeout.
	Timeout time.Duration

	// Client performs requests. Default: a plain *http.Client.
	Client HTTPDoer
}

// RemoteEngine is an HTTP client for a service speaking the /api/* contract.
//
// # Description
//
// Each call derives a context bounded by the configured timeout from the
// caller's context, so both the deadline and caller cancellation abort the
// request. Failures come back as *RemoteError with a kind describing what
// went wrong; the Facade turns all of them into local fallbacks.
//
// # Thread Safety
//
// RemoteEngine is safe for concurrent use.
type RemoteEngine struct {
	baseURL string
	timeout time.Duration
	client  HTTPDoer
}

// NewRemoteEngine validates cfg and creates a RemoteEngine.
//
// # Inputs
//
//   - cfg: BaseURL must be an absolute http or https URL.
//
// # Outputs
//
//   - *RemoteEngine: Ready to use.
//   - error: Non-nil if BaseURL is invalid.
//
// # Examples
//
//	remote, err := engine.NewRemoteEngine(engine.RemoteConfig{
//	    BaseURL: "http://localhost:5000",
//	    Timeout: 5 * time.Second,
//	})
func NewRemoteEngine(cfg RemoteConfig) (*RemoteEngine, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base URL %q: %w", cfg.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid remote base URL %q: want http(s)://host[:port]", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &RemoteEngine{
		baseURL: base,
		timeout: timeout,
		client:  client,
	}, nil
}

// Name implements Port.
func (e *RemoteEngine) Name() string {
	return EngineRemote
}

// BaseURL returns the normalized service root.
func (e *RemoteEngine) BaseURL() string {
	return e.baseURL
}

// Health calls GET /api/health.
//
// # Outputs
//
//   - datatypes.HealthResponse: The decoded body, also on Rejected.
//   - error: *RemoteError. Kind is Rejected when the body decodes but the
//     status is anything other than "healthy".
func (e *RemoteEngine) Health(ctx context.Context) (datatypes.HealthResponse, error) {
	var health datatypes.HealthResponse
	if err := e.do(ctx, "health", http.MethodGet, pathHealth, nil, &health); err != nil {
		return health, err
	}
	if health.Status != datatypes.StatusHealthy {
		return health, &RemoteError{
			Kind:    RemoteErrorRejected,
			Op:      "health",
			Message: fmt.Sprintf("status %q is not %q", health.Status, datatypes.StatusHealthy),
		}
	}
	return health, nil
}

// remoteTransformBody uses pointers so missing fields can be detected.
type remoteTransformBody struct {
	Success         *bool                     `json:"success"`
	TransformedText *string                   `json:"transformed_text"`
	Statistics      *datatypes.WireStatistics `json:"statistics"`
	OptionsUsed     *datatypes.WireOptions    `json:"options_used"`
	Error           string                    `json:"error"`
}

// Transform implements Port by calling POST /api/transform.
//
// # Description
//
// A response counts as successful only if success is true and both
// transformed_text and statistics are present. Fields missing from a
// partial options_used keep the values that were sent.
//
// # Outputs
//
//   - datatypes.TransformResult: Valid only when error is nil.
//   - error: *RemoteError on any failure.
func (e *RemoteEngine) Transform(ctx context.Context, text string, opts datatypes.TransformOptions) (datatypes.TransformResult, error) {
	reqBody := datatypes.NewTransformRequest(text, opts)
	sent := opts.ToWire()
	body := remoteTransformBody{OptionsUsed: &sent}

	if err := e.do(ctx, "transform", http.MethodPost, pathTransform, reqBody, &body); err != nil {
		return datatypes.TransformResult{}, err
	}

	switch {
	case body.Success == nil:
		return datatypes.TransformResult{}, malformed("transform", "missing success flag")
	case !*body.Success:
		msg := body.Error
		if msg == "" {
			msg = "remote reported failure"
		}
		return datatypes.TransformResult{}, &RemoteError{Kind: RemoteErrorRejected, Op: "transform", Message: msg}
	case body.TransformedText == nil:
		return datatypes.TransformResult{}, malformed("transform", "missing transformed_text")
	case body.Statistics == nil:
		return datatypes.TransformResult{}, malformed("transform", "missing statistics")
	}

	// An explicit null replaces the seeded pointer.
	if body.OptionsUsed == nil {
		body.OptionsUsed = &sent
	}

	return datatypes.TransformResult{
		TransformedText: *body.TransformedText,
		Statistics:      body.Statistics.FromWire(),
		OptionsUsed:     body.OptionsUsed.FromWire(),
	}, nil
}

// Sample implements Port by calling GET /api/sample. An empty sample_text
// is reported as Malformed.
func (e *RemoteEngine) Sample(ctx context.Context) (string, error) {
	var sample datatypes.SampleResponse
	if err := e.do(ctx, "sample", http.MethodGet, pathSample, nil, &sample); err != nil {
		return "", err
	}
	if sample.SampleText == "" {
		return "", malformed("sample", "missing sample_text")
	}
	return sample.SampleText, nil
}

// do performs one bounded JSON round trip and decodes a 2xx body into out.
func (e *RemoteEngine) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := tracer.Start(ctx, "RemoteEngine."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("humanizer.remote.url", e.baseURL+path),
		),
	)
	defer span.End()

	err := e.roundTrip(ctx, op, method, path, in, out)
	if err != nil {
		var remoteErr *RemoteError
		if errors.As(err, &remoteErr) {
			span.SetAttributes(attribute.String("humanizer.error_kind", remoteErr.Kind.String()))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (e *RemoteEngine) roundTrip(ctx context.Context, op, method, path string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &RemoteError{Kind: RemoteErrorTransport, Op: op, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, method, e.baseURL+path, reader)
	if err != nil {
		return &RemoteError{Kind: RemoteErrorTransport, Op: op, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(callCtx, propagation.HeaderCarrier(req.Header))

	resp, err := e.client.Do(req)
	if err != nil {
		return classifyTransportError(ctx, callCtx, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(ctx, callCtx, op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &RemoteError{
			Kind:       RemoteErrorStatus,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    statusMessage(raw),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &RemoteError{Kind: RemoteErrorMalformed, Op: op, Message: "failed to parse response", Err: err}
	}
	return nil
}

// classifyTransportError separates caller cancellation, our own deadline
// and plain connection failures.
func classifyTransportError(parent, callCtx context.Context, op string, err error) *RemoteError {
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return &RemoteError{Kind: RemoteErrorCancelled, Op: op, Message: "request cancelled", Err: err}
	}
	var netErr net.Error
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &RemoteError{Kind: RemoteErrorTimeout, Op: op, Message: "request timed out", Err: err}
	}
	return &RemoteError{Kind: RemoteErrorTransport, Op: op, Message: "cannot reach remote engine", Err: err}
}

// statusMessage prefers the {"error": ...} field and falls back to a
// truncated body excerpt.
func statusMessage(raw []byte) string {
	var body datatypes.ErrorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorSnippet {
		text = text[:maxErrorSnippet] + "..."
	}
	if text == "" {
		return "unexpected status"
	}
	return text
}

func malformed(op, msg string) *RemoteError {
	return &RemoteError{Kind: RemoteErrorMalformed, Op: op, Message: msg}
}
