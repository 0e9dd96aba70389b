package embedding

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

const opEmbed = "embed"

type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed turns text into a vector.
// POST {endpoint} {"input": text} -> {"data": [{"embedding": [...]}]}
func (c *Connector) Embed(ctx context.Context, text string) (entity.EmbeddingVector, error) {
	ctx = logger.WithFallback(ctx, c.logger)

	ctxzap.Debug(ctx, "generating embedding", zap.Int("input_length", len(text)))

	req := &entity.EmbeddingRequest{
		Input: text,
		Model: c.config.Model,
	}

	var resp entity.EmbeddingResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp); err != nil {
		return nil, common.Classify(opEmbed, err)
	}

	if len(resp.Data) == 0 {
		return nil, common.Malformed(opEmbed, "response has no data entries")
	}
	if len(resp.Data[0].Embedding) == 0 {
		return nil, common.Malformed(opEmbed, "first data entry has an empty embedding")
	}

	ctxzap.Debug(ctx, "embedding generated", zap.Int("dimension", len(resp.Data[0].Embedding)))

	return resp.Data[0].Embedding, nil
}
