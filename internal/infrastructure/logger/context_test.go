package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestWithContext_FromContext(t *testing.T) {
	t.Run("round trips logger through context", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)

		got := FromContext(ctx)
		assert.Same(t, logger, got)
	})

	t.Run("returns no-op logger when context has none", func(t *testing.T) {
		got := FromContext(context.Background())
		require.NotNil(t, got)
		// Must not panic when used
		got.Info("ignored")
	})
}

func TestContextEnrichment(t *testing.T) {
	t.Run("request id", func(t *testing.T) {
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-123")
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("tenant id", func(t *testing.T) {
		ctx, _ := WithTenantID(context.Background(), zap.NewNop(), "tenant-1")
		assert.Equal(t, "tenant-1", GetTenantID(ctx))
	})

	t.Run("user id", func(t *testing.T) {
		ctx, _ := WithUserID(context.Background(), zap.NewNop(), "user-9")
		assert.Equal(t, "user-9", GetUserID(ctx))
	})

	t.Run("missing values return empty strings", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})
}

func TestL(t *testing.T) {
	t.Run("injects context fields into log entries", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := zap.New(core)

		ctx := WithContext(context.Background(), logger)
		ctx, _ = WithRequestID(ctx, logger, "req-42")
		ctx, _ = WithTenantID(ctx, logger, "tenant-7")

		L(ctx).Info("hello")

		entries := logs.All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "tenant-7", fields["tenant_id"])
	})

	t.Run("works on bare context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).Info("ignored")
		})
	})
}
