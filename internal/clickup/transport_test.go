package clickup

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/toolkit"
)

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, `{"teams": []}`)
	})
	c := newTestClient(t, mux)

	out, err := c.Run(context.Background(), toolkit.ModeGetTeams, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"teams": []}`, out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_RateLimitedExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(w, `{"err": "Rate limit reached", "ECODE": "APP_002"}`)
	})
	c := newTestClient(t, mux, func(cfg *Config) { cfg.MaxRetries = 2 })

	_, err := c.Run(context.Background(), toolkit.ModeGetTeams, "")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, `{"err": "Token invalid", "ECODE": "OAUTH_025"}`)
	})
	c := newTestClient(t, mux)

	_, err := c.Run(context.Background(), toolkit.ModeGetTeams, "")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "GET /team")
	assert.Contains(t, err.Error(), "OAUTH_025")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_EmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /task/abc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, mux)

	r, err := c.do(context.Background(), request{mode: toolkit.ModeUpdateTask, method: http.MethodPut, path: "/task/abc"})
	require.NoError(t, err)
	assert.True(t, r.IsObject())
}

func TestDo_InvalidJSONResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `<html>maintenance</html>`)
	})
	c := newTestClient(t, mux)

	_, err := c.Run(context.Background(), toolkit.ModeGetTeams, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDo_CancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"teams": []}`)
	})
	c := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, toolkit.ModeGetTeams, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `{"teams": []}`)
	})
	c := newTestClient(t, mux)
	c.metrics = metrics

	_, err = c.Run(context.Background(), toolkit.ModeGetTeams, "")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["clickup_api_requests_total"])
	assert.Equal(t, int64(1), totals["clickup_api_retries_total"])
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		header string
		want   int
	}{
		{"", 0},
		{"5", 5},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Retry-After", tt.header)
		}
		assert.Equal(t, tt.want, retryAfterSeconds(h), tt.header)
	}
}
