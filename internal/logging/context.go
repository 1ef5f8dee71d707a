package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldCommit is the standardized structured logging key for abbreviated commit hashes.
	FieldCommit = "commit"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
)

type contextKey int

const (
	runIDKey contextKey = iota
	commitKey
	stageKey
)

// WithRunID stores a pipeline run identifier on the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithCommit stores an abbreviated commit hash on the context.
func WithCommit(ctx context.Context, commit string) context.Context {
	return context.WithValue(ctx, commitKey, commit)
}

// WithStage stores a pipeline stage name on the context.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, slog.String(FieldRunID, runID))
	}
	if commit, ok := ctx.Value(commitKey).(string); ok && commit != "" {
		fields = append(fields, slog.String(FieldCommit, commit))
	}
	if stage, ok := ctx.Value(stageKey).(string); ok && stage != "" {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
