package chat

import (
	"context"

	"github.com/futig/rag-chat/internal/entity"
)

type Retriever interface {
	Retrieve(ctx context.Context, query string) []entity.RetrievedDocument
}

type CompletionClient interface {
	Complete(ctx context.Context, messages []entity.CompletionMessage, maxTokens int, temperature *float64) (string, error)
}
