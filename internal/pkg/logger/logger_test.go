package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = WithAction(ctx, "chat_turn")
	ctx = WithSession(ctx, "sess-1")
	ctxzap.Info(ctx, "done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "chat_turn", fields["action"])
	assert.Equal(t, "sess-1", fields["session_id"])
}

func TestWithSession_EmptyIDLeavesContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithSession(ctx, ""))
}

func TestWithFallback(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fallback := zap.New(core)

	ctx := WithFallback(context.Background(), fallback)
	ctxzap.Info(ctx, "from fallback")
	require.Equal(t, 1, logs.Len())

	requestCore, requestLogs := observer.New(zap.InfoLevel)
	reqCtx := ctxzap.ToContext(context.Background(), zap.New(requestCore))
	ctxzap.Info(WithFallback(reqCtx, fallback), "from request")

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1, requestLogs.Len())
}

func TestWithFallback_NilLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithFallback(ctx, nil))
}
