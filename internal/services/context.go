package services

import "context"

type contextKey string

const (
	itemIDKey  contextKey = "item_id"
	backendKey contextKey = "backend"
)

// WithItemID annotates context with the work item identifier.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the work item identifier if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(itemIDKey).(string)
	return v, ok && v != ""
}

// WithBackend annotates context with the active backend name.
func WithBackend(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, backendKey, name)
}

// BackendFromContext extracts the active backend name if present.
func BackendFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(backendKey).(string)
	return v, ok && v != ""
}
