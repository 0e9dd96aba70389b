package builder

import (
	"testing"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/integration/embedding"
	"github.com/futig/rag-chat/internal/integration/llm"
	"github.com/futig/rag-chat/internal/integration/openai"
	"github.com/futig/rag-chat/internal/integration/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupLogger(t *testing.T) {
	logger, err := setupLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = setupLogger("loud")
	assert.Error(t, err)
}

func TestBuildModelClients(t *testing.T) {
	logger := zap.NewNop()

	mocks := buildModelClients(&config.Config{EnableMocks: true}, logger)
	assert.IsType(t, &embedding.MockConnector{}, mocks.embedder)
	assert.IsType(t, &llm.MockConnector{}, mocks.completion)
	assert.Equal(t, embedding.MockDimension, mocks.dimension)

	cfg := &config.Config{Provider: "openai", OpenAICfg: config.OpenAIConfig{APIKey: "k"}}
	cfg.SearchCfg.Dimension = 1536
	oa := buildModelClients(cfg, logger)
	assert.IsType(t, &openai.Client{}, oa.embedder)
	assert.Same(t, oa.embedder, oa.completion)
	assert.Equal(t, 1536, oa.dimension)

	httpClients := buildModelClients(&config.Config{Provider: "http"}, logger)
	assert.IsType(t, &embedding.Connector{}, httpClients.embedder)
	assert.IsType(t, &llm.Connector{}, httpClients.completion)
}

func TestBuildSearchBackend(t *testing.T) {
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.SearchCfg.Backend = config.SearchBackendMemory
	assert.IsType(t, &search.MemoryIndex{}, buildSearchBackend(cfg, nil, logger))

	cfg.SearchCfg.Backend = config.SearchBackendElastic
	cfg.SearchCfg.Elastic.Url = "http://localhost:9200"
	assert.IsType(t, &search.ElasticConnector{}, buildSearchBackend(cfg, nil, logger))
}
