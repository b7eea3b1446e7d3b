package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil || adapter.logger == nil {
		t.Fatal("NewSlogAdapter(nil) should fall back to the default logger")
	}

	logger := slog.Default()
	if NewSlogAdapter(logger).Logger() != logger {
		t.Error("Logger() should return the wrapped logger")
	}
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(NewLogger(&buf, true))

	adapter.Debug("d", "k", 1)
	adapter.Info("i")
	adapter.Warn("w")
	adapter.Error("e")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "k=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(NewLogger(&buf, false)).With("mode", "get_list")
	adapter.Info("hello")
	if !strings.Contains(buf.String(), "mode=get_list") {
		t.Errorf("With attributes missing from %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("dropped")
	var _ Logger = Discard()
	var _ Logger = DefaultLogger()
}
