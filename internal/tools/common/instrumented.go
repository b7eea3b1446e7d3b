package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandlerWithMode wraps a tool handler with metrics, audit
// logging and a tool span. mode is the ClickUp mode the tool dispatches to
// and may be empty.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandlerWithMode("clickup_get_task", "get_task", true, sc, handler))
func InstrumentedToolHandlerWithMode(toolName, mode string, readOnly bool, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		account := GetAccountFromArgs(ctx, request.GetArguments())

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithAccount(instrumentation.AccountLabel(account)).
			WithReadOnly(readOnly)
		if mode != "" {
			attrs.WithMode(mode)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account)
		if mode != "" {
			invocation.WithMode(mode, readOnly)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			invocation.Complete(false, nil)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocationWithAccount(ctx, toolName, invocation.Status(), account, duration)
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
