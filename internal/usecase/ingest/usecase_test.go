package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/integration/search"
	pkgRetry "github.com/futig/rag-chat/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// wordTruncator treats whitespace-separated words as tokens.
type wordTruncator struct{}

func (wordTruncator) Truncate(text string, maxTokens int) (string, bool, error) {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text, false, nil
	}
	return strings.Join(words[:maxTokens], " "), true, nil
}

type fakeEmbedder struct {
	failures map[string]error
	calls    map[string]int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{failures: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (entity.EmbeddingVector, error) {
	f.calls[text]++
	if err, ok := f.failures[text]; ok {
		return nil, err
	}
	return entity.EmbeddingVector{float32(len(text)), 1}, nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig() config.IngestConfig {
	return config.IngestConfig{
		MaxTokens:    5,
		MaxFileSize:  1024,
		ExcludeDirs:  []string{"bin", "obj", "embeddings", "wwwroot", ".git", "node_modules", "vendor"},
		ExcludeFiles: []string{"appsettings.json", ".env"},
		Retry:        pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestIngest_WalksAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/auth.ts", "X handles auth")
	writeFile(t, root, "README.md", "one two three four five six seven")
	writeFile(t, root, "bin/app.dll", "compiled")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "node_modules/x/index.js", "module.exports = 1")
	writeFile(t, root, "appsettings.json", `{"ApiKey":"secret"}`)
	writeFile(t, root, "config/.env", "TOKEN=1")
	writeFile(t, root, "logo.png", "\x89PNG\x00\x00")
	writeFile(t, root, "empty.txt", "   \n")
	writeFile(t, root, "big.txt", strings.Repeat("a", 2048))

	idx := search.NewMemoryIndex()
	uc := NewUsecase(newFakeEmbedder(), idx, wordTruncator{}, testConfig(), 2, zap.NewNop())

	report, err := uc.Ingest(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, 1, report.Truncated)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 5, report.Skipped)
	assert.Equal(t, 2, idx.Len())

	got, err := idx.Search(context.Background(), entity.EmbeddingVector{14, 1}, 5)
	require.NoError(t, err)
	paths := map[string]string{}
	for _, d := range got {
		paths[d.Path] = d.Content
		assert.Equal(t, DocumentID(d.Path), d.ID)
	}
	assert.Equal(t, "X handles auth", paths["src/auth.ts"])
	assert.Equal(t, "one two three four five", paths["README.md"])
}

func TestIngest_FailuresAreCountedNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.go", "package ok")
	writeFile(t, root, "flaky.go", "package flaky")
	writeFile(t, root, "bad.go", "package bad")

	emb := newFakeEmbedder()
	emb.failures["package flaky"] = entity.NewUpstreamError(entity.ErrorKindUpstreamHTTP, "embed", errors.New("503"))
	emb.failures["package bad"] = entity.NewUpstreamError(entity.ErrorKindMalformedResponse, "embed", errors.New("no data"))

	uc := NewUsecase(emb, search.NewMemoryIndex(), wordTruncator{}, testConfig(), 2, zap.NewNop())

	report, err := uc.Ingest(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 3, emb.calls["package flaky"])
	assert.Equal(t, 1, emb.calls["package bad"])
}

func TestIngest_FailedFileIsLogged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.go", "package bad")

	emb := newFakeEmbedder()
	emb.failures["package bad"] = entity.NewUpstreamError(entity.ErrorKindMalformedResponse, "embed", errors.New("no data"))

	core, logs := observer.New(zap.InfoLevel)
	uc := NewUsecase(emb, search.NewMemoryIndex(), wordTruncator{}, testConfig(), 2, zap.New(core))

	report, err := uc.Ingest(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	failed := logs.FilterMessage("index file failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zap.WarnLevel, failed[0].Level)
	assert.Equal(t, "bad.go", failed[0].ContextMap()["path"])
	assert.Equal(t, 1, logs.FilterMessage("ingestion finished").Len())
}

func TestNewUsecase_DefaultRetry(t *testing.T) {
	cfg := testConfig()
	cfg.Retry = pkgRetry.RetryConfig{}

	uc := NewUsecase(newFakeEmbedder(), search.NewMemoryIndex(), wordTruncator{}, cfg, 2, zap.NewNop())
	assert.Equal(t, *pkgRetry.DefaultRetryConfig(), uc.cfg.Retry)
}

func TestIngest_ReingestOverwrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")

	idx := search.NewMemoryIndex()
	uc := NewUsecase(newFakeEmbedder(), idx, wordTruncator{}, testConfig(), 2, zap.NewNop())

	_, err := uc.Ingest(context.Background(), root)
	require.NoError(t, err)
	writeFile(t, root, "a.go", "package a // changed")
	_, err = uc.Ingest(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())
}

func TestIngest_RootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")

	uc := NewUsecase(newFakeEmbedder(), search.NewMemoryIndex(), wordTruncator{}, testConfig(), 2, zap.NewNop())

	_, err := uc.Ingest(context.Background(), filepath.Join(root, "file.txt"))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, err = uc.Ingest(context.Background(), filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestIngest_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewUsecase(newFakeEmbedder(), search.NewMemoryIndex(), wordTruncator{}, testConfig(), 2, zap.NewNop())

	_, err := uc.Ingest(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, DocumentID("src/auth.ts"), DocumentID("src/auth.ts"))
	assert.NotEqual(t, DocumentID("src/auth.ts"), DocumentID("src/auth.go"))
	assert.Len(t, DocumentID("x"), 64)
}
