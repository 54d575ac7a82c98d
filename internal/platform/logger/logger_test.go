// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.Setup(logger.LoggerConfig{Level: "warn", Output: &buf})
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	slog.Warn("visible", "worker_id", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, 2, entry["worker_id"])
}

func TestSetupInvalidLevelWarns(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	_, err := logger.Setup(logger.LoggerConfig{Level: "chatty", Output: &buf})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "invalid log level configured")
}

func TestFromContext(t *testing.T) {
	l, buf := logger.NewTestLogger(t)

	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
	logger.FromContext(ctx).Info("from context")
	logger.AssertLogContains(t, buf, `"trace_id":"abc"`)

	// No logger in context falls back to the default
	assert.Equal(t, slog.Default(), logger.FromContext(context.Background()))
}

func TestRequestID(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", logger.RequestIDFromContext(ctx))
	assert.Empty(t, logger.RequestIDFromContext(context.Background()))
}

func TestFromContextOr(t *testing.T) {
	fallback, buf := logger.NewTestLogger(t)

	logger.FromContextOr(context.Background(), fallback).Info("plain")
	logger.AssertLogContains(t, buf, `"msg":"plain"`)

	buf.Reset()
	ctx := logger.WithRequestID(context.Background(), "req-9")
	logger.FromContextOr(ctx, fallback).Info("tagged")
	logger.AssertLogContains(t, buf, `"request_id":"req-9"`)

	// A logger in the context wins over the fallback
	other, otherBuf := logger.NewTestLogger(t)
	ctx = logger.WithLogger(ctx, other)
	logger.FromContextOr(ctx, fallback).Info("scoped")
	logger.AssertLogContains(t, otherBuf, `"msg":"scoped"`)
	assert.NotContains(t, buf.String(), "scoped")
}
