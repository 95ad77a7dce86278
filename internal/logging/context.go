package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProjectID identifies the project a log line concerns.
	FieldProjectID = "project_id"
	// FieldSequenceIndex is the 1-based batch index being generated.
	FieldSequenceIndex = "sequence_index"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	projectIDKey contextKey = iota
	sequenceIndexKey
)

// WithProjectID tags ctx with a project identifier.
func WithProjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, projectIDKey, id)
}

// WithSequenceIndex tags ctx with a batch sequence index.
func WithSequenceIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, sequenceIndexKey, index)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(projectIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldProjectID, id))
	}
	if index, ok := ctx.Value(sequenceIndexKey).(int); ok && index > 0 {
		fields = append(fields, slog.Int(FieldSequenceIndex, index))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
