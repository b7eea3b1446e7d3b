package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

const (
	testAccount = "jane@example.com"
	testTool    = "clickup_get_task"
)

func attrMap(attrs []slog.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testTool)

	if ti.Tool != testTool {
		t.Errorf("Tool = %q, want %q", ti.Tool, testTool)
	}
	if _, err := uuid.Parse(ti.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", ti.ID, err)
	}
	if NewToolInvocation(testTool).ID == ti.ID {
		t.Error("invocation ids must be unique")
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()
	if !ti.Success || ti.Status() != StatusSuccess {
		t.Error("expected success")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testTool).CompleteWithError(errors.New("task not found"))

	if ti.Success || ti.Status() != StatusError {
		t.Error("expected failure")
	}
	if ti.Error != "task not found" {
		t.Errorf("Error = %q", ti.Error)
	}

	// failure without an error value
	ti = NewToolInvocation(testTool).Complete(false, nil)
	if ti.Error != "" {
		t.Errorf("Error = %q, want empty", ti.Error)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testTool).
		WithAccount(testAccount).
		WithMode("get_task", true)
	ti.TraceID = "trace"
	ti.SpanID = "span"
	ti.CompleteWithError(errors.New("boom"))

	got := attrMap(ti.LogAttrs())
	if got["tool"] != testTool || got["mode"] != "get_task" || got["read_only"] != "true" {
		t.Errorf("unexpected attrs: %v", got)
	}
	if _, ok := got["account"]; ok {
		t.Error("LogAttrs must not contain the raw account")
	}
	if !strings.HasPrefix(got["account_hash"], "account:") {
		t.Errorf("account_hash = %q", got["account_hash"])
	}
	if got["error"] != "boom" || got["trace_id"] != "trace" {
		t.Errorf("missing error or trace id: %v", got)
	}
	if _, ok := got["span_id"]; ok {
		t.Error("span_id is audit-only")
	}

	audit := attrMap(ti.LogAuditAttrs())
	if audit["account"] != testAccount || audit["span_id"] != "span" {
		t.Errorf("unexpected audit attrs: %v", audit)
	}
}

func TestToolInvocation_LogAttrs_MinimalFields(t *testing.T) {
	got := attrMap(NewToolInvocation(testTool).CompleteSuccess().LogAttrs())
	for _, key := range []string{"account_hash", "mode", "trace_id", "error"} {
		if _, ok := got[key]; ok {
			t.Errorf("unexpected %s attribute", key)
		}
	}
	if got["invocation_id"] == "" {
		t.Error("invocation_id missing")
	}
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	ti := NewToolInvocation(testTool).WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Error("expected empty ids without a span")
	}

	recordSpans(t)
	ctx, span := StartToolSpan(context.Background(), testTool)
	defer span.End()
	ti = NewToolInvocation(testTool).WithSpanContext(ctx)
	if ti.TraceID == "" || ti.SpanID == "" {
		t.Error("expected ids from the active span")
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	al.LogToolInvocation(NewToolInvocation(testTool).WithAccount(testAccount).CompleteSuccess())
	out := buf.String()
	if !strings.Contains(out, "tool_executed") || !strings.Contains(out, "level=INFO") {
		t.Errorf("unexpected success record: %s", out)
	}
	if strings.Contains(out, testAccount) {
		t.Error("account must be hashed by default")
	}

	buf.Reset()
	al.SetIncludePII(true)
	al.LogToolInvocation(NewToolInvocation(testTool).WithAccount(testAccount).CompleteWithError(errors.New("x")))
	out = buf.String()
	if !strings.Contains(out, "tool_failed") || !strings.Contains(out, "level=WARN") {
		t.Errorf("unexpected failure record: %s", out)
	}
	if !strings.Contains(out, testAccount) {
		t.Error("account should be logged verbatim with PII enabled")
	}

	buf.Reset()
	al.SetEnabled(false)
	al.LogToolInvocation(NewToolInvocation(testTool).CompleteSuccess())
	if buf.Len() != 0 {
		t.Error("disabled audit logger should not write")
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var al *AuditLogger
	// Should not panic
	al.LogToolInvocation(NewToolInvocation(testTool))

	if NewAuditLoggerWithConfig(nil, AuditLoggingConfig{Enabled: true}).logger == nil {
		t.Error("nil logger should fall back to slog.Default")
	}
}
