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
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/humanizer/services/humanizer/config"
)

// initTracing installs the global tracer provider and propagator.
//
// # Description
//
// "none" leaves the no-op provider in place. "stdout" writes spans to w.
// "otlp" exports over a gRPC connection to cfg.Endpoint; a URL scheme on
// the endpoint is stripped because gRPC expects host:port.
//
// # Inputs
//
//   - ctx: Used while creating the exporter.
//   - cfg: Validated tracing config.
//   - w: Destination for the stdout exporter.
//
// # Outputs
//
//   - func(context.Context) error: Flushes and stops the provider. Never nil.
//   - error: Unknown exporter or exporter construction failure.
func initTracing(ctx context.Context, cfg config.TracingConfig, w io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var (
		exporter sdktrace.SpanExporter
		conn     *grpc.ClientConn
		err      error
	)
	switch cfg.Exporter {
	case "", "none":
		return noop, nil

	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return noop, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}

	case "otlp":
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
		if cfg.Insecure {
			creds = insecure.NewCredentials()
		}
		conn, err = grpc.NewClient(grpcTarget(cfg.Endpoint), grpc.WithTransportCredentials(creds))
		if err != nil {
			return noop, fmt.Errorf("failed to create OTLP connection: %w", err)
		}
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			conn.Close()
			return noop, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

	default:
		return noop, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", serviceName),
		attribute.String("service.version", Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if conn != nil {
			err = errors.Join(err, conn.Close())
		}
		return err
	}, nil
}

// grpcTarget turns "http://collector:4317/" into "collector:4317".
func grpcTarget(endpoint string) string {
	target := strings.TrimSpace(endpoint)
	for _, scheme := range []string{"http://", "https://", "grpc://"} {
		target = strings.TrimPrefix(target, scheme)
	}
	return strings.TrimSuffix(target, "/")
}
