package services

import "context"

type contextKey string

const (
	tripContextKey      contextKey = "memograph.trip"
	stageContextKey     contextKey = "memograph.stage"
	requestIDContextKey contextKey = "memograph.request_id"
)

// WithTrip annotates the context with the trip folder being processed.
func WithTrip(ctx context.Context, trip string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tripContextKey, trip)
}

// TripFromContext extracts the trip folder from the context if present.
func TripFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(tripContextKey).(string)
	return value, ok && value != ""
}

// WithStage annotates the context with the active stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stageContextKey, stage)
}

// StageFromContext extracts the stage name from the context if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(stageContextKey).(string)
	return value, ok && value != ""
}

// WithRequestID annotates the context with a correlation identifier for one
// stage execution.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(requestIDContextKey).(string)
	return value, ok && value != ""
}
