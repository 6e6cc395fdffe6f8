// Package observability wires structured logging, tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger is a structured logger for simchat components
type Logger struct {
	*slog.Logger
}

// ParseLevel maps a config level name to a slog level; unknown names are info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger writing to w. format is "json" or "text".
func NewLogger(component string, level slog.Level, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With(
		slog.String("component", component),
		slog.String("system", "simchat"),
	)

	return &Logger{Logger: logger}
}

// NewFileLogger opens (or appends to) path and logs there. The TUI uses it so
// log lines never land on the alternate screen.
func NewFileLogger(component string, level slog.Level, format, path string) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLogger(component, level, format, f), f, nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Named returns a logger for a sub-component
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("subcomponent", component))}
}

// WithContext returns a logger carrying the trace and span ids found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}

	return &Logger{
		Logger: l.Logger.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		),
	}
}

// WithProfile returns a logger with widget profile fields
func (l *Logger) WithProfile(name, endpoint string) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			slog.String("profile", name),
			slog.String("endpoint", endpoint),
		),
	}
}

// WithWorkflow returns a logger with workflow fields
func (l *Logger) WithWorkflow(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("workflow_id", id)),
	}
}

// LogExchangeFailure records a chat exchange that fell back to the fixed reply
func (l *Logger) LogExchangeFailure(kind string, status int, err error) {
	l.Warn("chat exchange failed",
		slog.String("kind", kind),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
}

// LogUpstreamCall records one completion call made by the backend
func (l *Logger) LogUpstreamCall(route, model, outcome string, seconds float64) {
	l.Info("upstream call",
		slog.String("route", route),
		slog.String("model", model),
		slog.String("outcome", outcome),
		slog.Float64("duration_seconds", seconds),
	)
}
