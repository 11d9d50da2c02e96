package logger

import (
	"context"
)

// ContextKey is used for context values
type ContextKey string

const (
	// PoolNameKey is the context key for the pool name
	PoolNameKey ContextKey = "pool_name"
	// ConnIDKey is the context key for the physical connection id
	ConnIDKey ContextKey = "conn_id"
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"
)

// WithContextValue adds a value to the context for logging
func WithContextValue(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// ExtractContextValues extracts logging-relevant values from context
func ExtractContextValues(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var args []any

	if poolName, ok := ctx.Value(PoolNameKey).(string); ok {
		args = append(args, "pool_name", poolName)
	}

	if connID, ok := ctx.Value(ConnIDKey).(string); ok {
		args = append(args, "conn_id", connID)
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, "request_id", requestID)
	}

	return args
}
