package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/devbox/internal/ports"
)

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(&buf, ports.LevelWarn)

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestConsoleLoggerFields(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(&buf, ports.LevelDebug)

	logger.Info(context.Background(), "applying step",
		ports.F("step", "apt:base"), ports.F("phase", 0))

	out := buf.String()
	assert.Contains(t, out, "applying step")
	assert.Contains(t, out, "step=apt:base")
	assert.Contains(t, out, "phase=0")
}

func TestConsoleLoggerWith(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	base := NewConsoleLogger(&buf, ports.LevelDebug)
	scoped := base.With(ports.F("run", "run-1"))

	scoped.Info(context.Background(), "step done", ports.F("step", "apt:base"))

	out := buf.String()
	assert.Contains(t, out, "run=run-1")
	assert.Contains(t, out, "step=apt:base")

	buf.Reset()
	base.Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "run=run-1", "With must not mutate the parent")
}
