package repository

import (
	"testing"
	"time"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestToEntityTranscriptEntry(t *testing.T) {
	id := uuid.New()
	sessionID := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got := toEntityTranscriptEntry(&transcriptRow{
		ID:        toPgUUID(id),
		SessionID: toPgUUID(sessionID),
		Speaker:   "assistant",
		Text:      "X handles auth.",
		CreatedAt: pgtype.Timestamptz{Time: at, Valid: true},
	})

	assert.Equal(t, id.String(), got.ID)
	assert.Equal(t, sessionID.String(), got.SessionID)
	assert.Equal(t, entity.SpeakerAssistant, got.Speaker)
	assert.Equal(t, "X handles auth.", got.Text)
	assert.Equal(t, at, got.CreatedAt)
}

func TestToEntityRetrievedDocument(t *testing.T) {
	got := toEntityRetrievedDocument(&documentRow{
		ID:       "abc",
		FileName: "auth.ts",
		Path:     "src/auth.ts",
		Content:  "X handles auth",
		Score:    1.8,
	})

	assert.Equal(t, entity.RetrievedDocument{
		ID:       "abc",
		FileName: "auth.ts",
		Path:     "src/auth.ts",
		Content:  "X handles auth",
		Score:    1.8,
	}, got)
}
