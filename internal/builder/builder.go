package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rag-chat/internal/api"
	chatapi "github.com/futig/rag-chat/internal/api/chat"
	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/conversation"
	"github.com/futig/rag-chat/internal/pkg/tokenizer"
	"github.com/futig/rag-chat/internal/pkg/validator"
	"github.com/futig/rag-chat/internal/repository"
	"github.com/futig/rag-chat/internal/usecase/chat"
	"github.com/futig/rag-chat/internal/usecase/ingest"
	"github.com/futig/rag-chat/internal/usecase/retrieval"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	transcriptRepo := repository.NewTranscriptPostgres(db)

	clients := buildModelClients(cfg, logger)
	backend := buildSearchBackend(cfg, db, logger)

	retriever := retrieval.NewRetriever(clients.embedder, backend, cfg.SearchCfg.TopK)
	logger.Info("Retriever configured", zap.Int("top_k", retriever.TopK()))
	store := conversation.NewStore(cfg.SystemPrompt, cfg.Chat.SessionTTL, cfg.Chat.CleanupInterval)

	chatUsecase := chat.NewUsecase(
		store,
		retriever,
		clients.completion,
		transcriptRepo,
		chat.OptionsFromConfig(cfg),
		logger,
	)

	chatValidator := validator.NewValidator(cfg.Chat)
	chatHandler := chatapi.NewHandler(chatUsecase, chatValidator)

	router := api.SetupRouter(chatHandler, logger)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: api.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var warmup func(context.Context)
	if cfg.SearchCfg.Backend == config.SearchBackendMemory && cfg.Ingest.Root != "" {
		ingestor := newIngestUsecase(cfg, clients, backend, logger)
		root := cfg.Ingest.Root
		warmup = func(ctx context.Context) {
			report, err := ingestor.Ingest(ctx, root)
			if err != nil {
				logger.Error("Startup ingestion failed", zap.String("root", root), zap.Error(err))
				return
			}
			logReport(logger, root, report)
		}
	}

	logger.Info("Application built successfully")

	return &App{
		server: server,
		db:     db,
		store:  store,
		warmup: warmup,
		logger: logger,
	}, nil
}

// BuildIngestor wires the ingestion pipeline. Only the pgvector backend
// needs a database connection.
func BuildIngestor() (*Ingestor, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	ingestor := &Ingestor{logger: logger}
	if cfg.SearchCfg.Backend == config.SearchBackendPgvector {
		ingestor.db, err = openDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
	}

	clients := buildModelClients(cfg, logger)
	backend := buildSearchBackend(cfg, ingestor.db, logger)
	ingestor.usecase = newIngestUsecase(cfg, clients, backend, logger)

	return ingestor, nil
}

func newIngestUsecase(cfg *config.Config, clients modelClients, backend searchBackend, logger *zap.Logger) *ingest.IngestUsecase {
	return ingest.NewUsecase(
		clients.embedder,
		backend,
		tokenizer.NewTiktoken(""),
		cfg.Ingest,
		clients.dimension,
		logger,
	)
}
