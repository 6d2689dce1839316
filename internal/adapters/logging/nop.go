package logging

import (
	"context"

	"github.com/felixgeelhaar/devbox/internal/ports"
)

// NopLogger discards all log messages.
type NopLogger struct{}

// NewNopLogger creates a logger that does nothing.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (NopLogger) Debug(context.Context, string, ...ports.Field) {}

// Info discards the message.
func (NopLogger) Info(context.Context, string, ...ports.Field) {}

// Warn discards the message.
func (NopLogger) Warn(context.Context, string, ...ports.Field) {}

// Error discards the message.
func (NopLogger) Error(context.Context, string, ...ports.Field) {}

// With returns the same logger.
func (n NopLogger) With(...ports.Field) ports.Logger { return n }

// Ensure NopLogger implements Logger.
var _ ports.Logger = NopLogger{}
