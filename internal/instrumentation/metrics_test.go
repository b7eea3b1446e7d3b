package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterValues returns the int64 sum data points of the named counter keyed
// by the value of attribute key.
func counterValues(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_RecordAPIRequest(t *testing.T) {
	m, reader := newManualMetrics(t, false)
	ctx := context.Background()

	m.RecordAPIRequest(ctx, "get_task", 200, 100*time.Millisecond)
	m.RecordAPIRequest(ctx, "get_task", 404, 10*time.Millisecond)
	m.RecordAPIRequest(ctx, "whatever", 0, time.Millisecond)

	byMode := counterValues(t, reader, "clickup_api_requests_total", attrMode)
	if byMode["get_task"] != 2 {
		t.Errorf("get_task count = %d, want 2", byMode["get_task"])
	}
	if byMode[StatusUnknown] != 1 {
		t.Errorf("unknown mode count = %d, want 1", byMode[StatusUnknown])
	}
}

func TestMetrics_RecordAPIRetry(t *testing.T) {
	m, reader := newManualMetrics(t, false)
	ctx := context.Background()

	m.RecordAPIRetry(ctx, "create_task", RetryReasonRateLimited)
	m.RecordAPIRetry(ctx, "create_task", RetryReasonServerError)
	m.RecordAPIRetry(ctx, "create_task", RetryReasonRateLimited)

	byReason := counterValues(t, reader, "clickup_api_retries_total", attrReason)
	if byReason[RetryReasonRateLimited] != 2 || byReason[RetryReasonServerError] != 1 {
		t.Errorf("unexpected retry counts: %v", byReason)
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	t.Run("account label hidden by default", func(t *testing.T) {
		m, reader := newManualMetrics(t, false)
		m.RecordToolInvocationWithAccount(context.Background(), "clickup_get_task", StatusSuccess, "work", time.Second)

		byAccount := counterValues(t, reader, "mcp_tool_invocations_total", attrAccount)
		if byAccount[""] != 1 {
			t.Errorf("expected no account label, got %v", byAccount)
		}
	})

	t.Run("account label with detailed labels", func(t *testing.T) {
		m, reader := newManualMetrics(t, true)
		m.RecordToolInvocationWithAccount(context.Background(), "clickup_get_task", StatusSuccess, "work", time.Second)

		byAccount := counterValues(t, reader, "mcp_tool_invocations_total", attrAccount)
		if byAccount["work"] != 1 {
			t.Errorf("expected account label, got %v", byAccount)
		}
	})
}

func TestMetrics_OtherRecorders(t *testing.T) {
	m, reader := newManualMetrics(t, false)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 5*time.Millisecond)
	m.RecordOAuthTokenExchange(ctx, OAuthResultFailure)
	m.IncrementActiveSessions(ctx)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	if got := counterValues(t, reader, "http_requests_total", attrPath)["/mcp"]; got != 1 {
		t.Errorf("http_requests_total = %d, want 1", got)
	}
	if got := counterValues(t, reader, "oauth_token_exchange_total", attrResult)[OAuthResultFailure]; got != 1 {
		t.Errorf("oauth_token_exchange_total = %d, want 1", got)
	}
	if got := counterValues(t, reader, "mcp_active_sessions", attrMode)[""]; got != 1 {
		t.Errorf("mcp_active_sessions = %d, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// Should not panic
	m.RecordHTTPRequest(ctx, "GET", "/", 200, 0)
	m.RecordAPIRequest(ctx, "get_task", 200, 0)
	m.RecordAPIRetry(ctx, "get_task", RetryReasonTransport)
	m.RecordOAuthTokenExchange(ctx, OAuthResultSuccess)
	m.RecordToolInvocation(ctx, "t", StatusSuccess, 0)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	(&Metrics{}).RecordAPIRequest(ctx, "get_task", 200, 0)
}
