package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID    contextKey = "run_id"
	ContextKeyDocument contextKey = "document"
)

// WithRunID tags the context with the batch or daemon run identifier
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocument adds the document file name to the context
func WithDocument(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyDocument, name)
}

// DocumentFromContext extracts the document name from context
func DocumentFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyDocument).(string); ok {
		return name
	}
	return ""
}

// WithTimeout creates a context with the specified timeout; a non-positive timeout only adds cancellation.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
