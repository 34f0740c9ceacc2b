package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	jobIDKey   contextKey = "job_id"
	sectionKey contextKey = "section"
	sourceKey  contextKey = "source"
	loggerKey  contextKey = "logger"
)

// WithRunID adds the report run ID to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithJobID adds the scheduler job ID to context
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// WithSection adds the report section being fetched to context
func WithSection(ctx context.Context, section string) context.Context {
	return context.WithValue(ctx, sectionKey, section)
}

// WithSource adds the data source name to context
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// WithLogger stores a pre-built logger in context
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the global logger enriched with the context fields
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Logger
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}

	var fields []zap.Field
	for _, key := range []contextKey{runIDKey, jobIDKey, sectionKey, sourceKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}

	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ErrorField creates an error field, tolerating nil
func ErrorField(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Error(err)
}

// DurationField creates a duration field
func DurationField(key string, d time.Duration) zap.Field {
	return zap.Duration(key, d)
}

// CountField creates a count field
func CountField(key string, count int) zap.Field {
	return zap.Int(key, count)
}
