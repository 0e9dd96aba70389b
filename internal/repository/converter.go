package repository

import (
	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type transcriptRow struct {
	ID        pgtype.UUID
	SessionID pgtype.UUID
	Speaker   string
	Text      string
	CreatedAt pgtype.Timestamptz
}

type documentRow struct {
	ID       string
	FileName string
	Path     string
	Content  string
	Score    float64
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

func toEntityTranscriptEntry(row *transcriptRow) *entity.TranscriptEntry {
	return &entity.TranscriptEntry{
		ID:        uuid.UUID(row.ID.Bytes).String(),
		SessionID: uuid.UUID(row.SessionID.Bytes).String(),
		Speaker:   entity.Speaker(row.Speaker),
		Text:      row.Text,
		CreatedAt: row.CreatedAt.Time,
	}
}

func toEntityRetrievedDocument(row *documentRow) entity.RetrievedDocument {
	return entity.RetrievedDocument{
		ID:       row.ID,
		Content:  row.Content,
		FileName: row.FileName,
		Path:     row.Path,
		Score:    row.Score,
	}
}
