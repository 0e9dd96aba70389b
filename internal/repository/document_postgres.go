package repository

import (
	"context"
	"fmt"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DocumentRepository is the pgvector search backend.
type DocumentRepository interface {
	Search(ctx context.Context, query entity.EmbeddingVector, k int) ([]entity.RetrievedDocument, error)
	EnsureIndex(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, doc entity.IndexedDocument) error
}

var _ DocumentRepository = &DocumentPostgres{}

const opPgvectorSearch = "pgvector search"

const searchDocumentsQuery = `
SELECT id, file_name, path, content, (1 - (embedding <=> $1)) + 1.0 AS score
FROM documents
WHERE content <> ''
ORDER BY score DESC, id
LIMIT $2`

const upsertDocumentQuery = `
INSERT INTO documents (id, file_name, path, content, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET file_name  = EXCLUDED.file_name,
    path       = EXCLUDED.path,
    content    = EXCLUDED.content,
    embedding  = EXCLUDED.embedding,
    updated_at = now()`

// DocumentPostgres implements DocumentRepository on a pgvector column. The
// pool must have the vector type registered (see pgxvec.RegisterTypes).
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{
		db: db,
	}
}

func (r *DocumentPostgres) Search(ctx context.Context, query entity.EmbeddingVector, k int) (
	[]entity.RetrievedDocument, error,
) {
	rows, err := r.db.Query(ctx, searchDocumentsQuery, pgvector.NewVector(query), k)
	if err != nil {
		return nil, entity.NewUpstreamError(entity.ErrorKindGeneric, opPgvectorSearch, err)
	}
	defer rows.Close()

	docs := make([]entity.RetrievedDocument, 0, k)
	for rows.Next() {
		var row documentRow
		if err := rows.Scan(&row.ID, &row.FileName, &row.Path, &row.Content, &row.Score); err != nil {
			return nil, entity.NewUpstreamError(entity.ErrorKindMalformedResponse, opPgvectorSearch, err)
		}
		docs = append(docs, toEntityRetrievedDocument(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, entity.NewUpstreamError(entity.ErrorKindGeneric, opPgvectorSearch, err)
	}

	return docs, nil
}

// EnsureIndex is a no-op: the documents table is created by migrations and
// its vector column accepts any dimension.
func (r *DocumentPostgres) EnsureIndex(_ context.Context, _ int) error {
	return nil
}

func (r *DocumentPostgres) Upsert(ctx context.Context, doc entity.IndexedDocument) error {
	_, err := r.db.Exec(ctx, upsertDocumentQuery,
		doc.ID,
		doc.FileName,
		doc.Path,
		doc.Content,
		pgvector.NewVector(doc.Embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.Path, err)
	}

	return nil
}
