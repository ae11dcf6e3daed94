package admin

import (
	"context"
	"log/slog"
)

// Telemetry records console events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry events as structured log records.
type SlogTelemetry struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Record logs the event with its payload flattened into attributes.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]slog.Attr, 0, len(payload))
	for k, v := range payload {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.LogAttrs(ctx, t.Level, event, attrs...)
}

func normalizeLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
