package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/rag-chat/internal/conversation"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/usecase/ingest"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	server *http.Server
	db     *pgxpool.Pool
	store  *conversation.Store
	warmup func(context.Context)
	logger *zap.Logger
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.warmup != nil {
		go a.warmup(ctx)
	}

	// Start HTTP server in goroutine
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.closeDatabase()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("Shutting down server gracefully",
		zap.Int("open_sessions", a.store.Count()),
	)

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	a.closeDatabase()

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}

func (a *App) closeDatabase() {
	if a.db != nil {
		a.logger.Info("Closing database connections")
		a.db.Close()
	}
}

// Ingestor indexes a directory tree into the configured search backend.
type Ingestor struct {
	usecase *ingest.IngestUsecase
	db      *pgxpool.Pool
	logger  *zap.Logger
}

// Run ingests root, stopping early on SIGINT or SIGTERM.
func (i *Ingestor) Run(root string) (entity.IngestReport, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	report, err := i.usecase.Ingest(ctx, root)
	if err != nil {
		return report, err
	}

	logReport(i.logger, root, report, zap.Duration("elapsed", time.Since(started)))
	return report, nil
}

func (i *Ingestor) Close() {
	if i.db != nil {
		i.db.Close()
	}
	_ = i.logger.Sync()
}

func logReport(logger *zap.Logger, root string, report entity.IngestReport, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("root", root),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("truncated", report.Truncated),
	}, extra...)
	logger.Info("Ingestion finished", fields...)
}
