// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AleutianAI/humanizer/pkg/logging"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/observability"
)

// checkerFunc adapts a function to HealthChecker.
type checkerFunc func(ctx context.Context) (datatypes.HealthResponse, error)

func (f checkerFunc) Health(ctx context.Context) (datatypes.HealthResponse, error) {
	return f(ctx)
}

func healthy() checkerFunc {
	return func(context.Context) (datatypes.HealthResponse, error) {
		return datatypes.HealthResponse{Status: datatypes.StatusHealthy}, nil
	}
}

func unhealthy() checkerFunc {
	return func(context.Context) (datatypes.HealthResponse, error) {
		return datatypes.HealthResponse{}, &RemoteError{Kind: RemoteErrorTransport, Op: "health", Message: "refused"}
	}
}

func TestAvailabilityState_String(t *testing.T) {
	assert.Equal(t, "UNKNOWN", AvailabilityUnknown.String())
	assert.Equal(t, "AVAILABLE", AvailabilityAvailable.String())
	assert.Equal(t, "UNAVAILABLE", AvailabilityUnavailable.String())
	assert.Equal(t, "UNKNOWN(7)", AvailabilityState(7).String())
}

func TestAvailability_StartsUnknown(t *testing.T) {
	a := NewAvailability()
	assert.Equal(t, AvailabilityUnknown, a.State())
	assert.Equal(t, AvailabilityUnknown, a.Set(AvailabilityAvailable))
	assert.Equal(t, AvailabilityAvailable, a.State())
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name    string
		checker HealthChecker
		want    AvailabilityState
	}{
		{"healthy", healthy(), AvailabilityAvailable},
		{"failing", unhealthy(), AvailabilityUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAvailability()
			p := NewProber(tt.checker, a, WithProbeLogger(logging.Discard()))

			assert.Equal(t, tt.want, p.Probe(context.Background()))
			assert.Equal(t, tt.want, a.State())
		})
	}
}

func TestProber_ProbeAgainstRemote(t *testing.T) {
	var status atomic.Value
	status.Store("healthy")
	remote := newStubRemote(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"status":"`+status.Load().(string)+`"}`)
	})
	a := NewAvailability()
	p := NewProber(remote, a, WithProbeLogger(logging.Discard()))

	assert.Equal(t, AvailabilityAvailable, p.Probe(context.Background()))

	status.Store("starting")
	assert.Equal(t, AvailabilityUnavailable, p.Probe(context.Background()))
}

func TestProber_TimeoutMarksUnavailable(t *testing.T) {
	slow := checkerFunc(func(ctx context.Context) (datatypes.HealthResponse, error) {
		<-ctx.Done()
		return datatypes.HealthResponse{}, &RemoteError{Kind: RemoteErrorTimeout, Op: "health", Err: ctx.Err()}
	})
	a := NewAvailability()
	p := NewProber(slow, a, WithProbeTimeout(20*time.Millisecond), WithProbeLogger(logging.Discard()))

	assert.Equal(t, AvailabilityUnavailable, p.Probe(context.Background()))
}

func TestProber_CallerCancellationLeavesState(t *testing.T) {
	a := NewAvailability()
	a.Set(AvailabilityAvailable)

	ctx, cancel := context.WithCancel(context.Background())
	checker := checkerFunc(func(context.Context) (datatypes.HealthResponse, error) {
		cancel()
		return datatypes.HealthResponse{}, context.Canceled
	})
	p := NewProber(checker, a, WithProbeLogger(logging.Discard()))

	assert.Equal(t, AvailabilityAvailable, p.Probe(ctx))
	assert.Equal(t, AvailabilityAvailable, a.State())
}

func TestProber_OnChangeAndMetrics(t *testing.T) {
	var healthyNow atomic.Bool
	checker := checkerFunc(func(ctx context.Context) (datatypes.HealthResponse, error) {
		if healthyNow.Load() {
			return healthy()(ctx)
		}
		return unhealthy()(ctx)
	})

	var changes []string
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	p := NewProber(checker, NewAvailability(),
		WithProbeLogger(logging.Discard()),
		WithProbeMetrics(metrics),
		OnAvailabilityChange(func(from, to AvailabilityState) {
			changes = append(changes, from.String()+"->"+to.String())
		}),
	)

	p.Probe(context.Background())
	p.Probe(context.Background())
	healthyNow.Store(true)
	p.Probe(context.Background())

	assert.Equal(t, []string{"UNKNOWN->UNAVAILABLE", "UNAVAILABLE->AVAILABLE"}, changes)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProbesTotal.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProbesTotal.WithLabelValues("available")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RemoteAvailable))
}

func TestProber_ConcurrentProbesShareOneCall(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	checker := checkerFunc(func(context.Context) (datatypes.HealthResponse, error) {
		calls.Add(1)
		<-gate
		return datatypes.HealthResponse{Status: datatypes.StatusHealthy}, nil
	})
	p := NewProber(checker, NewAvailability(), WithProbeLogger(logging.Discard()))

	var wg sync.WaitGroup
	results := make([]AvailabilityState, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Probe(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the other callers join the in-flight probe before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, AvailabilityAvailable, r)
	}
	assert.Less(t, calls.Load(), int32(len(results)))
}

// ignoreKeepAlive skips idle connection goroutines left by earlier
// httptest-based tests in this package.
var ignoreKeepAlive = []goleak.Option{
	goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
}

func TestProber_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreKeepAlive...)

	var probes atomic.Int32
	checker := checkerFunc(func(context.Context) (datatypes.HealthResponse, error) {
		probes.Add(1)
		return datatypes.HealthResponse{Status: datatypes.StatusHealthy}, nil
	})
	p := NewProber(checker, NewAvailability(), WithProbeLogger(logging.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return probes.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestProber_RunOnceWithoutInterval(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreKeepAlive...)

	var probes atomic.Int32
	checker := checkerFunc(func(context.Context) (datatypes.HealthResponse, error) {
		probes.Add(1)
		return datatypes.HealthResponse{}, &RemoteError{Kind: RemoteErrorStatus, Op: "health"}
	})
	a := NewAvailability()

	NewProber(checker, a, WithProbeLogger(logging.Discard())).Run(context.Background(), 0)

	assert.Equal(t, int32(1), probes.Load())
	assert.Equal(t, AvailabilityUnavailable, a.State())
}
