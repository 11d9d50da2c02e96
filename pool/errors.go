package pool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guileen/dbpool/logger"
)

// Error codes for the different pool failure modes
const (
	ErrCodeExhausted   = "pool_exhausted"
	ErrCodeOpenFailed  = "connection_open_failed"
	ErrCodeInvalidated = "invalidated_use"
	ErrCodeInterrupted = "interrupted"
	ErrCodeRollback    = "rollback_failed"
)

// PoolError represents a custom error type for the pool
type PoolError struct {
	Code    string
	Message string
	Op      string
	Err     error
}

// Error implements the error interface
func (e *PoolError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap implements the unwrap interface for error chaining
func (e *PoolError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *PoolError) Is(target error) bool {
	if t, ok := target.(*PoolError); ok {
		return e.Code == t.Code
	}
	return false
}

// Log logs the error with the provided logger
func (e *PoolError) Log(ctx context.Context, logLevel slog.Level) {
	logFields := []any{
		"error_code", e.Code,
		"operation", e.Op,
		"message", e.Message,
	}

	if ctx != nil {
		contextFields := logger.ExtractContextValues(ctx)
		logFields = append(logFields, contextFields...)
	}

	if e.Err != nil {
		logFields = append(logFields, logger.ErrorField(e.Err))
	}

	switch logLevel {
	case slog.LevelDebug:
		logger.DebugContext(ctx, "Pool error occurred", logFields...)
	case slog.LevelInfo:
		logger.InfoContext(ctx, "Pool error occurred", logFields...)
	case slog.LevelWarn:
		logger.WarnContext(ctx, "Pool error occurred", logFields...)
	default:
		logger.ErrorContext(ctx, "Pool error occurred", logFields...)
	}
}

// NewPoolError creates a new PoolError
func NewPoolError(code, op, message string) *PoolError {
	return &PoolError{Code: code, Op: op, Message: message}
}

// WrapError creates a new PoolError wrapping an underlying cause
func WrapError(code, op, message string, err error) *PoolError {
	return &PoolError{Code: code, Op: op, Message: message, Err: err}
}

// Sentinel values for errors.Is checks; matching is by code.
var (
	ErrPoolExhausted  = &PoolError{Code: ErrCodeExhausted}
	ErrOpenFailed     = &PoolError{Code: ErrCodeOpenFailed}
	ErrInvalidatedUse = &PoolError{Code: ErrCodeInvalidated}
	ErrInterrupted    = &PoolError{Code: ErrCodeInterrupted}
)
