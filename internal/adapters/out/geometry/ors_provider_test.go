package geometry_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"replenishment/internal/adapters/out/geometry"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const solved = `{
  "code": 0,
  "unassigned": [],
  "routes": [{
    "vehicle": 1,
    "distance": 23500,
    "duration": 1800,
    "steps": [
      {"type": "start", "distance": 0, "duration": 0},
      {"type": "job", "job": 2, "distance": 8000, "duration": 600},
      {"type": "job", "job": 1, "distance": 15000, "duration": 1200},
      {"type": "job", "job": 3, "distance": 23500, "duration": 1800},
      {"type": "end", "distance": 23500, "duration": 1800}
    ]
  }]
}`

func points(t *testing.T) []ports.Waypoint {
	t.Helper()
	out := make([]ports.Waypoint, 0, 3)
	for _, lat := range []float64{45.1, 45.2, 45.3} {
		p, err := kernel.NewGeoPoint(lat, -73.5)
		require.NoError(t, err)
		out = append(out, ports.Waypoint{ID: kernel.NewUUID(), Location: p})
	}
	return out
}

func newProvider(t *testing.T, url string) *geometry.ORSProvider {
	t.Helper()
	p, err := geometry.NewORSProvider(geometry.Config{APIKey: "secret", BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	return p
}

func TestORSProvider_Sequence(t *testing.T) {
	// Given
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimization", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(solved))
	}))
	defer server.Close()

	origin, err := kernel.NewGeoPoint(45.0, -73.6)
	require.NoError(t, err)

	// When
	seq, err := newProvider(t, server.URL).Sequence(t.Context(), &origin, points(t))

	// Then
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, seq.Order)
	assert.InDelta(t, 23.5, seq.TotalDistanceKm, 1e-9)
	assert.Equal(t, 30*time.Minute, seq.TotalDuration)
	assert.InDeltaSlice(t, []float64{8, 7, 8.5}, seq.LegDistancesKm, 1e-9)
	assert.Equal(t, []time.Duration{10 * time.Minute, 10 * time.Minute, 10 * time.Minute}, seq.LegDurations)

	vehicles := body["vehicles"].([]any)
	start := vehicles[0].(map[string]any)["start"].([]any)
	assert.InDelta(t, -73.6, start[0], 1e-9)
	assert.InDelta(t, 45.0, start[1], 1e-9)
	assert.Len(t, body["jobs"], 3)
}

func TestORSProvider_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(solved))
	}))
	defer server.Close()

	seq, err := newProvider(t, server.URL).Sequence(t.Context(), nil, points(t))

	require.NoError(t, err)
	assert.Len(t, seq.Order, 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestORSProvider_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newProvider(t, server.URL).Sequence(t.Context(), nil, points(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestORSProvider_RejectsIncompleteSolutions(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error code", `{"code": 3, "error": "no vehicle"}`},
		{"unassigned jobs", `{"code": 0, "unassigned": [{"id": 2}], "routes": [{"steps": []}]}`},
		{"unknown job", `{"code": 0, "routes": [{"steps": [{"type": "job", "job": 9, "distance": 1}]}]}`},
		{"no routes", `{"code": 0, "routes": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newProvider(t, server.URL).Sequence(t.Context(), nil, points(t))

			require.Error(t, err)
		})
	}
}

func TestORSProvider_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newProvider(t, server.URL).Sequence(t.Context(), nil, points(t))
	require.Error(t, err)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	last := spans[len(spans)-1]
	assert.Equal(t, "ORSProvider.Sequence", last.Name())
	assert.Equal(t, codes.Error, last.Status().Code)
}

func TestNewORSProvider_RequiresKey(t *testing.T) {
	_, err := geometry.NewORSProvider(geometry.Config{})

	require.Error(t, err)
}
