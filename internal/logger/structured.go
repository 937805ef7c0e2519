// Package logger provides context-aware structured logging for the
// evaluation kernel, built on logrus.
package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextKey is the type used for all context values this package reads.
type ContextKey string

const (
	// TraceIDKey carries a cross-call trace identifier.
	TraceIDKey ContextKey = "trace_id"
	// TaskIDKey carries the benchmark task id an evaluation is running for.
	TaskIDKey ContextKey = "task_id"
	// EvaluationIDKey carries a unique id for one evaluate() call.
	EvaluationIDKey ContextKey = "evaluation_id"
)

// StructuredLogger wraps *logrus.Logger with context-aware field extraction.
type StructuredLogger struct {
	*logrus.Logger
}

// NewStructuredLogger wraps an existing logrus.Logger.
func NewStructuredLogger(l *logrus.Logger) *StructuredLogger {
	return &StructuredLogger{Logger: l}
}

// WithContext returns an entry populated with whatever of trace_id/task_id/
// evaluation_id are present on ctx.
func (l *StructuredLogger) WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if v := ctx.Value(TraceIDKey); v != nil {
		fields["trace_id"] = v
	}
	if v := ctx.Value(TaskIDKey); v != nil {
		fields["task_id"] = v
	}
	if v := ctx.Value(EvaluationIDKey); v != nil {
		fields["evaluation_id"] = v
	}

	return l.WithFields(fields)
}

// LogDialectFallback records that the parser fell back from the requested
// dialect to another one, per the design note that every fallback must be
// auditable.
func (l *StructuredLogger) LogDialectFallback(ctx context.Context, requested, fallback, sql string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"requested_dialect": requested,
		"fallback_dialect":  fallback,
		"type":              "parse_fallback",
	}).Warn("SQL parser fell back to a different dialect")
}

// LogAdapterEvent records a connect/close/reconnect event on an Engine
// Adapter.
func (l *StructuredLogger) LogAdapterEvent(ctx context.Context, dialect, event string, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"dialect": dialect,
		"event":   event,
		"type":    "engine_adapter",
	})
	if err != nil {
		entry.WithError(err).Error("engine adapter event failed")
		return
	}
	entry.Debug("engine adapter event")
}

// LogExecution records one adapter.Execute call's outcome and timing.
func (l *StructuredLogger) LogExecution(ctx context.Context, dialect, sql string, duration time.Duration, rowCount int64, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"dialect":     dialect,
		"duration_ms": duration.Milliseconds(),
		"row_count":   rowCount,
		"type":        "query_execution",
	})

	if err != nil {
		entry.WithError(err).Error("query execution failed")
		return
	}
	entry.Info("query execution completed")
}

// LogCancellation records that an in-flight operation was cancelled.
func (l *StructuredLogger) LogCancellation(ctx context.Context, stage string) {
	l.WithContext(ctx).WithField("stage", stage).Warn("operation cancelled")
}
