package builder

import (
	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/integration/embedding"
	"github.com/futig/rag-chat/internal/integration/llm"
	"github.com/futig/rag-chat/internal/integration/openai"
	"github.com/futig/rag-chat/internal/integration/search"
	"github.com/futig/rag-chat/internal/repository"
	"github.com/futig/rag-chat/internal/usecase/chat"
	"github.com/futig/rag-chat/internal/usecase/ingest"
	"github.com/futig/rag-chat/internal/usecase/retrieval"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// searchBackend serves both retrieval and ingestion.
type searchBackend interface {
	retrieval.Searcher
	ingest.Indexer
}

type modelClients struct {
	embedder   retrieval.Embedder
	completion chat.CompletionClient
	// dimension of the vectors produced by embedder
	dimension int
}

func buildModelClients(cfg *config.Config, logger *zap.Logger) modelClients {
	switch {
	case cfg.EnableMocks:
		logger.Info("Using mock connectors for external services")
		return modelClients{
			embedder:   embedding.NewMockConnector(logger),
			completion: llm.NewMockConnector(logger),
			dimension:  embedding.MockDimension,
		}
	case cfg.Provider == "openai":
		logger.Info("Using OpenAI client", zap.String("chat_model", cfg.OpenAICfg.ChatModel))
		client := openai.NewClient(cfg.OpenAICfg, cfg.CompletionCfg.RequestTimeout, logger)
		return modelClients{
			embedder:   client,
			completion: client,
			dimension:  cfg.SearchCfg.Dimension,
		}
	default:
		logger.Info("Using HTTP connectors for external services")
		return modelClients{
			embedder:   embedding.NewConnector(cfg.EmbeddingCfg, logger),
			completion: llm.NewConnector(cfg.CompletionCfg, logger),
			dimension:  cfg.SearchCfg.Dimension,
		}
	}
}

// buildSearchBackend returns the configured backend. db may be nil unless
// the pgvector backend is selected.
func buildSearchBackend(cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) searchBackend {
	logger.Info("Search backend selected", zap.String("backend", cfg.SearchCfg.Backend))

	switch cfg.SearchCfg.Backend {
	case config.SearchBackendPgvector:
		return repository.NewDocumentPostgres(db)
	case config.SearchBackendMemory:
		return search.NewMemoryIndex()
	default:
		return search.NewElasticConnector(cfg.SearchCfg, logger)
	}
}
