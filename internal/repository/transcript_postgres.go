package repository

import (
	"context"
	"fmt"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TranscriptRepository persists the user-visible side of conversations.
type TranscriptRepository interface {
	AppendExchange(ctx context.Context, sessionID, userText, assistantText string) error
	GetSessionTranscript(ctx context.Context, sessionID string) ([]*entity.TranscriptEntry, error)
}

var _ TranscriptRepository = &TranscriptPostgres{}

const insertTranscriptEntryQuery = `
INSERT INTO chat_transcript (id, session_id, speaker, text)
VALUES ($1, $2, $3, $4)`

const selectSessionTranscriptQuery = `
SELECT id, session_id, speaker, text, created_at
FROM chat_transcript
WHERE session_id = $1
ORDER BY created_at, id`

// TranscriptPostgres implements TranscriptRepository using PostgreSQL
type TranscriptPostgres struct {
	db *pgxpool.Pool
}

func NewTranscriptPostgres(db *pgxpool.Pool) *TranscriptPostgres {
	return &TranscriptPostgres{
		db: db,
	}
}

// AppendExchange stores a user message and the assistant reply in one
// transaction so a transcript never holds half a turn.
func (r *TranscriptPostgres) AppendExchange(ctx context.Context, sessionID, userText, assistantText string) error {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		entries := []struct {
			speaker entity.Speaker
			text    string
		}{
			{speaker: entity.SpeakerUser, text: userText},
			{speaker: entity.SpeakerAssistant, text: assistantText},
		}

		for _, e := range entries {
			if _, err := tx.Exec(ctx, insertTranscriptEntryQuery,
				toPgUUID(uuid.New()),
				toPgUUID(sessID),
				string(e.speaker),
				e.text,
			); err != nil {
				return fmt.Errorf("insert %s transcript entry: %w", e.speaker, err)
			}
		}

		return nil
	})
}

func (r *TranscriptPostgres) GetSessionTranscript(ctx context.Context, sessionID string) (
	[]*entity.TranscriptEntry, error,
) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx, selectSessionTranscriptQuery, toPgUUID(sessID))
	if err != nil {
		return nil, fmt.Errorf("get session transcript: %w", err)
	}
	defer rows.Close()

	var entries []*entity.TranscriptEntry
	for rows.Next() {
		var row transcriptRow
		if err := rows.Scan(&row.ID, &row.SessionID, &row.Speaker, &row.Text, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		entries = append(entries, toEntityTranscriptEntry(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript entries: %w", err)
	}

	return entries, nil
}
