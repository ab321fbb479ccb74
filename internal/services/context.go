package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	listKey  contextKey = "list"
	stageKey contextKey = "stage"
)

// WithRunID annotates context with the rotation run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithList annotates context with the showdown list slug being processed.
func WithList(ctx context.Context, slug string) context.Context {
	if slug == "" {
		return ctx
	}
	return context.WithValue(ctx, listKey, slug)
}

// ListFromContext returns the showdown list slug if present.
func ListFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(listKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with a rotation stage or run phase name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
