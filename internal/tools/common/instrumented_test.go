package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/server"
)

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// toolCounts sums mcp_tool_invocations_total by status.
func toolCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestInstrumentedToolHandlerWithMode_WithoutInstrumentation(t *testing.T) {
	sc := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandlerWithMode("test_tool", "", true, sc, handler)(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandlerWithMode_PropagatesErrors(t *testing.T) {
	sc := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandlerWithMode("test_tool", "", true, sc, handler)(context.Background(), mcp.CallToolRequest{})
	assert.Equal(t, expectedErr, err)
}

func TestInstrumentedToolHandlerWithMode_RecordsMetrics(t *testing.T) {
	sc := newServerContext(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(metrics)

	ok := InstrumentedToolHandlerWithMode("clickup_get_task", "get_task", true, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(`{"id": "abc"}`), nil
		})
	failed := InstrumentedToolHandlerWithMode("clickup_update_task", "update_task", false, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("ClickUp API error"), nil
		})

	for i := 0; i < 2; i++ {
		_, err := ok(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
	}
	_, err = failed(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"success": 2, "error": 1}, toolCounts(t, reader))
}

func TestInstrumentedToolHandlerWithMode_AuditLog(t *testing.T) {
	sc := newServerContext(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	}))

	handler := InstrumentedToolHandlerWithMode("clickup_create_task", "create_task", false, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		})

	ctx := server.ContextWithAccount(context.Background(), "work")
	_, err := handler(ctx, callRequest(map[string]interface{}{"instructions": "{}"}))
	require.Error(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "tool_failed", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "clickup_create_task", record["tool"])
	assert.Equal(t, "create_task", record["mode"])
	assert.Equal(t, "work", record["account"])
	assert.Equal(t, "boom", record["error"])
}
