package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without a model: it echoes the latest user message
// and lists the context messages it was given.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.CompletionMessage, _ int, _ *float64) (string, error) {
	ctx = logger.WithFallback(ctx, m.logger)

	ctxzap.Info(ctx, "[MOCK] requesting completion", zap.Int("message_count", len(messages)))

	var (
		question string
		contexts int
	)
	for i, msg := range messages {
		switch {
		case msg.Role == string(entity.RoleUser):
			question = msg.Content
		case msg.Role == string(entity.RoleSystem) && i > 0:
			contexts++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[mock] You asked: %q.", question)
	if contexts > 0 {
		fmt.Fprintf(&sb, " %d context message(s) were provided.", contexts)
	}

	return sb.String(), nil
}
