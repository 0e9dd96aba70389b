package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	pkgRetry "github.com/futig/rag-chat/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// IngestUsecase walks a source tree and indexes every text file as one
// document with its embedding.
type IngestUsecase struct {
	embedder  Embedder
	indexer   Indexer
	truncator Truncator
	cfg       config.IngestConfig
	dimension int
	logger    *zap.Logger

	excludeDirs  map[string]struct{}
	excludeFiles map[string]struct{}
}

func NewUsecase(
	embedder Embedder,
	indexer Indexer,
	truncator Truncator,
	cfg config.IngestConfig,
	dimension int,
	logger *zap.Logger,
) *IngestUsecase {
	if cfg.Retry == (pkgRetry.RetryConfig{}) {
		cfg.Retry = *pkgRetry.DefaultRetryConfig()
	}

	return &IngestUsecase{
		embedder:     embedder,
		indexer:      indexer,
		truncator:    truncator,
		cfg:          cfg,
		dimension:    dimension,
		logger:       logger,
		excludeDirs:  toSet(cfg.ExcludeDirs),
		excludeFiles: toSet(cfg.ExcludeFiles),
	}
}

// DocumentID is derived from the slash-separated path relative to the
// ingestion root, so re-ingesting a tree overwrites its documents.
func DocumentID(relPath string) string {
	sum := sha256.Sum256([]byte(relPath))
	return hex.EncodeToString(sum[:])
}

// Ingest indexes root. Per-file failures are counted in the report; only
// setup failures and cancellation abort the run.
func (uc *IngestUsecase) Ingest(ctx context.Context, root string) (entity.IngestReport, error) {
	ctx = logger.WithFallback(ctx, uc.logger)

	var report entity.IngestReport

	root, err := filepath.Abs(root)
	if err != nil {
		return report, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return report, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%w: root %s is not a directory", entity.ErrInvalidParameter, root)
	}

	if err := uc.cfg.Retry.Do(ctx, func() error {
		return uc.indexer.EnsureIndex(ctx, uc.dimension)
	}); err != nil {
		return report, fmt.Errorf("ensure index: %w", err)
	}

	ctxzap.Info(ctx, "ingestion started", zap.String("root", root))

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			ctxzap.Warn(ctx, "cannot access path", zap.String("path", path), zap.Error(walkErr))
			report.Failed++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && uc.isExcludedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		uc.ingestFile(ctx, root, path, d, &report)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", root, err)
	}

	ctxzap.Info(ctx, "ingestion finished",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("truncated", report.Truncated),
	)

	return report, nil
}

func (uc *IngestUsecase) ingestFile(ctx context.Context, root, path string, d fs.DirEntry, report *entity.IngestReport) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		report.Failed++
		return
	}
	rel = filepath.ToSlash(rel)
	fields := []zap.Field{zap.String("path", rel)}

	content, err := uc.readText(path, d)
	if err != nil {
		if errors.Is(err, entity.ErrUnsupportedFile) {
			ctxzap.Debug(ctx, "file skipped", append(fields, zap.Error(err))...)
			report.Skipped++
			return
		}
		ctxzap.Warn(ctx, "read file failed", append(fields, zap.Error(err))...)
		report.Failed++
		return
	}

	text, truncated, err := uc.truncator.Truncate(content, uc.cfg.MaxTokens)
	if err != nil {
		ctxzap.Warn(ctx, "tokenize file failed", append(fields, zap.Error(err))...)
		report.Failed++
		return
	}
	if truncated {
		ctxzap.Debug(ctx, "file truncated", append(fields, zap.Int("max_tokens", uc.cfg.MaxTokens))...)
		report.Truncated++
	}

	doc := entity.IndexedDocument{
		ID:       DocumentID(rel),
		FileName: d.Name(),
		Path:     rel,
		Content:  text,
	}

	err = uc.cfg.Retry.Do(ctx, func() error {
		vec, err := uc.embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
		doc.Embedding = vec
		return uc.indexer.Upsert(ctx, doc)
	}, retry.RetryIf(isRetryable))
	if err != nil {
		ctxzap.Warn(ctx, "index file failed",
			append(fields, zap.String("error_kind", string(entity.KindOf(err))), zap.Error(err))...)
		report.Failed++
		return
	}

	ctxzap.Debug(ctx, "file indexed", fields...)
	report.Indexed++
}

// readText returns the file content, or ErrUnsupportedFile for excluded,
// oversized, empty or binary files.
func (uc *IngestUsecase) readText(path string, d fs.DirEntry) (string, error) {
	if !d.Type().IsRegular() {
		return "", fmt.Errorf("%w: not a regular file", entity.ErrUnsupportedFile)
	}
	if uc.isExcludedFile(d.Name()) {
		return "", fmt.Errorf("%w: excluded by name", entity.ErrUnsupportedFile)
	}

	info, err := d.Info()
	if err != nil {
		return "", err
	}
	if uc.cfg.MaxFileSize > 0 && info.Size() > uc.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit", entity.ErrUnsupportedFile, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", entity.ErrUnsupportedFile)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: empty", entity.ErrUnsupportedFile)
	}

	return string(data), nil
}

func (uc *IngestUsecase) isExcludedDir(name string) bool {
	_, ok := uc.excludeDirs[name]
	return ok
}

func (uc *IngestUsecase) isExcludedFile(name string) bool {
	_, ok := uc.excludeFiles[name]
	return ok
}

// A malformed answer will not improve on retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return entity.KindOf(err) != entity.ErrorKindMalformedResponse
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
