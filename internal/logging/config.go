package logging

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a private type for context keys
type contextKey int

const (
	loggingEnabledKey contextKey = iota
	quietEnabledKey
	loggerKey
)

// EnableLogging returns a context with API call logging enabled
func EnableLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggingEnabledKey, true)
}

// IsLoggingEnabled checks if API call logging is enabled in the context
func IsLoggingEnabled(ctx context.Context) bool {
	enabled, ok := ctx.Value(loggingEnabledKey).(bool)
	return ok && enabled
}

// EnableQuiet returns a context in which informational output is suppressed
func EnableQuiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietEnabledKey, true)
}

// IsQuiet checks if quiet mode is enabled in the context
func IsQuiet(ctx context.Context) bool {
	enabled, ok := ctx.Value(quietEnabledKey).(bool)
	return ok && enabled
}

// WithLogger stores the operator logger in ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored by WithLogger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}
