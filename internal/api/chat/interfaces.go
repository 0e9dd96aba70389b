package chat

import (
	"context"

	"github.com/futig/rag-chat/internal/entity"
)

type ChatUsecase interface {
	StartSession(ctx context.Context) entity.Session
	GetResponse(ctx context.Context, sessionID, userInput string) (*entity.Reply, error)
	History(ctx context.Context, sessionID string) (entity.Session, []entity.Message, error)
	ResetSession(ctx context.Context, sessionID string) error
	Transcript(ctx context.Context, sessionID string) ([]*entity.TranscriptEntry, error)
}
