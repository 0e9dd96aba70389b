package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	opEmbed    = "embed"
	opComplete = "complete"
)

// Client serves both the embedding and the completion roles through the
// OpenAI API (or any endpoint speaking its protocol).
type Client struct {
	client *openai.Client
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

func NewClient(cfg config.OpenAIConfig, timeout time.Duration, logger *zap.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) Embed(ctx context.Context, text string) (entity.EmbeddingVector, error) {
	ctx = logger.WithFallback(ctx, c.logger)

	ctxzap.Debug(ctx, "generating embedding via openai", zap.String("model", c.cfg.EmbeddingModel))

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, classify(opEmbed, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, entity.NewUpstreamError(entity.ErrorKindMalformedResponse, opEmbed, errors.New("response has no embedding"))
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) Complete(
	ctx context.Context,
	messages []entity.CompletionMessage,
	maxTokens int,
	temperature *float64,
) (string, error) {
	ctx = logger.WithFallback(ctx, c.logger)

	ctxzap.Info(ctx, "requesting completion via openai",
		zap.String("model", c.cfg.ChatModel),
		zap.Int("message_count", len(messages)),
	)

	req := openai.ChatCompletionRequest{
		Model:     c.cfg.ChatModel,
		Messages:  make([]openai.ChatCompletionMessage, len(messages)),
		MaxTokens: maxTokens,
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	if temperature != nil {
		req.Temperature = sdkTemperature(*temperature)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(opComplete, err)
	}

	if len(resp.Choices) == 0 {
		return "", entity.NewUpstreamError(entity.ErrorKindMalformedResponse, opComplete, errors.New("response has no choices"))
	}

	return resp.Choices[0].Message.Content, nil
}

// sdkTemperature keeps an explicit zero on the wire: the SDK omits a zero
// Temperature and the API would then apply its default.
func sdkTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func classify(op string, err error) *entity.UpstreamError {
	var (
		apiErr    *openai.APIError
		reqErr    *openai.RequestError
		urlErr    *url.Error
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &apiErr), errors.As(err, &reqErr), errors.As(err, &urlErr), errors.As(err, &netErr):
		return entity.NewUpstreamError(entity.ErrorKindUpstreamHTTP, op, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return entity.NewUpstreamError(entity.ErrorKindMalformedResponse, op, err)
	default:
		return entity.NewUpstreamError(entity.ErrorKindGeneric, op, err)
	}
}
