package ingest

import (
	"context"

	"github.com/futig/rag-chat/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (entity.EmbeddingVector, error)
}

// Indexer is the write side of a search backend.
type Indexer interface {
	EnsureIndex(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, doc entity.IndexedDocument) error
}

type Truncator interface {
	Truncate(text string, maxTokens int) (string, bool, error)
}
