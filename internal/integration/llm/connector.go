package llm

import (
	"context"
	"net/http"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	"github.com/futig/rag-chat/internal/integration/common"
	pkghttp "github.com/futig/rag-chat/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const opComplete = "complete"

type Connector struct {
	config    config.CompletionConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CompletionConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends the conversation to the chat-completion endpoint and returns
// the content of the first choice. A nil temperature leaves the field out.
func (c *Connector) Complete(
	ctx context.Context,
	messages []entity.CompletionMessage,
	maxTokens int,
	temperature *float64,
) (string, error) {
	ctx = logger.WithFallback(ctx, c.logger)

	ctxzap.Info(ctx, "requesting completion", zap.Int("message_count", len(messages)))

	req := &entity.CompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp entity.CompletionResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp); err != nil {
		return "", common.Classify(opComplete, err)
	}

	if len(resp.Choices) == 0 {
		return "", common.Malformed(opComplete, "response has no choices")
	}
	if resp.Choices[0].Message == nil {
		return "", common.Malformed(opComplete, "first choice has no message")
	}

	content := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "completion received", zap.Int("reply_length", len(content)))

	return content, nil
}
