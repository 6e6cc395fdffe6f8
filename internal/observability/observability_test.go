package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("server", slog.LevelInfo, "json", &buf)

	logger.WithProfile("assistant", "http://x/api/chat").Info("hello")
	logger.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "server" || entry["profile"] != "assistant" || entry["msg"] != "hello" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("tui", slog.LevelDebug, "text", &buf)

	logger.LogExchangeFailure("status", 500, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"component=tui", "kind=status", "status=500", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "simchat.log")

	logger, closer, err := NewFileLogger("tui", slog.LevelInfo, "text", path)
	if err != nil {
		t.Fatalf("NewFileLogger() returned error: %v", err)
	}
	logger.WithWorkflow("wf-1").Info("created")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "workflow_id=wf-1") {
		t.Errorf("log file = %s", data)
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := newTracerProvider("simchat-test", "test", sdktrace.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("newTracerProvider() returned error: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	logger := NewLogger("server", slog.LevelInfo, "json", &buf)

	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext without a span should return the same logger")
	}

	ctx, span := StartSpan(context.Background(), SpanChatbotInteraction)
	SetAttributes(ctx, AttrRoute.String("/api/chat"))
	RecordError(ctx, errors.New("upstream failed"))
	logger.WithContext(ctx).Info("traced")
	span.End()

	if !strings.Contains(buf.String(), span.SpanContext().TraceID().String()) {
		t.Errorf("trace id missing from %s", buf.String())
	}

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Name() != SpanChatbotInteraction {
		t.Fatalf("recorded spans = %v", ended)
	}
	if len(ended[0].Events()) == 0 {
		t.Error("expected the recorded error as a span event")
	}
}

func TestTracerProviderShutdownNil(t *testing.T) {
	var tp *TracerProvider
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil provider = %v", err)
	}
}

func TestMetrics(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/test", "ok"))
	RecordRequest("/api/test", "ok")
	RecordRequest("/api/test", "ok")
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/test", "ok")); got != before+2 {
		t.Errorf("requests = %v, want %v", got, before+2)
	}

	RecordEmail("sent")
	if testutil.ToFloat64(EmailsSent.WithLabelValues("sent")) < 1 {
		t.Error("email counter not incremented")
	}

	RecordUpstreamLatency("/api/test", 0.2)
	if testutil.CollectAndCount(UpstreamLatency) == 0 {
		t.Error("expected latency series")
	}
}
