package retrieval

import (
	"context"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (entity.EmbeddingVector, error)
}

type Searcher interface {
	Search(ctx context.Context, query entity.EmbeddingVector, k int) ([]entity.RetrievedDocument, error)
}

// Retriever finds the documents most similar to a query. It never fails:
// any embedding or search error degrades to an empty result.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	topK     int
}

func NewRetriever(embedder Embedder, searcher Searcher, topK int) *Retriever {
	if topK < 1 {
		topK = config.DefaultTopK
	}

	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
	}
}

func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns up to TopK documents ordered as the search backend ranked
// them.
func (r *Retriever) Retrieve(ctx context.Context, query string) []entity.RetrievedDocument {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		ctxzap.Warn(ctx, "embedding failed, continuing without context",
			zap.String("error_kind", string(entity.KindOf(err))),
			zap.Error(err),
		)
		return nil
	}

	docs, err := r.searcher.Search(ctx, vec, r.topK)
	if err != nil {
		ctxzap.Warn(ctx, "document search failed, continuing without context",
			zap.String("error_kind", string(entity.KindOf(err))),
			zap.Error(err),
		)
		return nil
	}

	if len(docs) > r.topK {
		docs = docs[:r.topK]
	}

	ctxzap.Debug(ctx, "documents retrieved", zap.Int("count", len(docs)))

	return docs
}
