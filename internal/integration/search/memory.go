package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const opMemorySearch = "memory search"

// MemoryIndex keeps documents in process and scores them by brute force.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]entity.IndexedDocument
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs: make(map[string]entity.IndexedDocument),
	}
}

func (m *MemoryIndex) EnsureIndex(_ context.Context, _ int) error {
	return nil
}

func (m *MemoryIndex) Upsert(_ context.Context, doc entity.IndexedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[doc.ID] = doc
	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.docs)
}

func (m *MemoryIndex) Search(ctx context.Context, query entity.EmbeddingVector, k int) ([]entity.RetrievedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]entity.RetrievedDocument, 0, len(m.docs))
	for id, doc := range m.docs {
		if len(doc.Embedding) != len(query) {
			return nil, entity.NewUpstreamError(entity.ErrorKindGeneric, opMemorySearch,
				fmt.Errorf("document %s has dimension %d, query has %d", id, len(doc.Embedding), len(query)))
		}
		if doc.Content == "" {
			continue
		}

		results = append(results, entity.RetrievedDocument{
			ID:       id,
			Content:  doc.Content,
			FileName: doc.FileName,
			Path:     doc.Path,
			Score:    CosineSimilarity(query, doc.Embedding) + ScoreOffset,
		})
	}

	results = Rank(results, k)
	ctxzap.Debug(ctx, "memory search finished", zap.Int("hits", len(results)))

	return results, nil
}
