// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics registers metrics on an isolated registry.
func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}

func TestNewMetrics_RegistersAll(t *testing.T) {
	m, reg := newTestMetrics(t)

	// Vec collectors only appear once a label set is touched.
	m.RecordTransform("local", time.Millisecond)
	m.RecordFallback("transform", "TRANSPORT")
	m.RecordProbe(true)
	m.RecordHTTPRequest("/api/transform", 200)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"humanizer_engine_transforms_total":           false,
		"humanizer_engine_fallbacks_total":            false,
		"humanizer_engine_probes_total":               false,
		"humanizer_engine_remote_available":           false,
		"humanizer_engine_transform_duration_seconds": false,
		"humanizer_http_requests_total":               false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestMetrics_RecordTransform(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordTransform("remote", 20*time.Millisecond)
	m.RecordTransform("local", time.Millisecond)
	m.RecordTransform("local", time.Millisecond)

	if got := testutil.ToFloat64(m.TransformsTotal.WithLabelValues("local")); got != 2 {
		t.Errorf("local transforms = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransformsTotal.WithLabelValues("remote")); got != 1 {
		t.Errorf("remote transforms = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.TransformDurationSeconds); got != 2 {
		t.Errorf("duration series = %v, want 2", got)
	}
}

func TestMetrics_RecordFallback(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordFallback("transform", "STATUS")
	m.RecordFallback("transform", "STATUS")
	m.RecordFallback("sample", "MALFORMED")

	if got := testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("transform", "STATUS")); got != 2 {
		t.Errorf("transform/STATUS = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("sample", "MALFORMED")); got != 1 {
		t.Errorf("sample/MALFORMED = %v, want 1", got)
	}
}

func TestMetrics_RecordProbe(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordProbe(true)
	if got := testutil.ToFloat64(m.RemoteAvailable); got != 1 {
		t.Errorf("gauge after healthy probe = %v, want 1", got)
	}

	m.RecordProbe(false)
	if got := testutil.ToFloat64(m.RemoteAvailable); got != 0 {
		t.Errorf("gauge after failed probe = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("unavailable")); got != 1 {
		t.Errorf("unavailable probes = %v, want 1", got)
	}
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTPRequest("/api/transform", 400)
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/transform", "400")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	// Must not panic.
	m.RecordTransform("local", time.Second)
	m.RecordFallback("transform", "TRANSPORT")
	m.RecordProbe(false)
	m.RecordHTTPRequest("/api/health", 200)
}
