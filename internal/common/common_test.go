package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

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
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	LogInfo("report built", Fields{"sales": 3})
	LogDebug("hidden", nil)

	out := buf.String()
	assert.Contains(t, out, `"msg":"report built"`)
	assert.Contains(t, out, `"sales":3`)
	assert.NotContains(t, out, "hidden")

	assert.Error(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"))
}

func TestUserError(t *testing.T) {
	err := NewUserError("product not found", ErrNotFound)

	assert.Equal(t, "product not found: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var ue *UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "product not found", ue.UserMessage)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		permanent := &RetryableError{Err: errors.New("access denied"), Retryable: false}
		err := WithRetry(ctx, func() error {
			calls++
			return permanent
		}, opts)

		assert.Equal(t, permanent, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		err := WithRetry(ctx, func() error { return errors.New("timeout") }, opts)
		assert.ErrorIs(t, err, ErrMaxRetries)
	})
}
