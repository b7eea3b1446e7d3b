// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the clickup-mcp server.
//
// # Metrics
//
// Server:
//   - http_requests_total, http_request_duration_seconds
//   - mcp_active_sessions
//
// ClickUp API (labels: mode, status_class):
//   - clickup_api_requests_total
//   - clickup_api_request_duration_seconds
//   - clickup_api_retries_total (labels: mode, reason)
//
// OAuth:
//   - oauth_token_exchange_total (label: result)
//
// MCP tools (labels: tool, status):
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// Label values pass through ModeLabel, StatusClass and AccountLabel so that
// user input cannot grow the label sets.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and for each
// logical ClickUp API request (clickup.<mode>). Retries are recorded as span
// events on the request span.
//
// # Configuration
//
// DefaultConfig reads:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: clickup-mcp)
//   - METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordAPIRequest(ctx, "get_task", 200, time.Since(start))
//	m.RecordToolInvocation(ctx, "clickup_get_task", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
