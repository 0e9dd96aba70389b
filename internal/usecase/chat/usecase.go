package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/conversation"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	"github.com/futig/rag-chat/internal/pkg/sanitizer"
	"github.com/futig/rag-chat/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Options tune a single chat turn.
type Options struct {
	MaxHistoryMessages int
	MaxTokens          int
	Temperature        *float64
	// Bounds the transcript write, which happens under the session lock.
	TranscriptTimeout time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxHistoryMessages: cfg.Chat.MaxHistoryMessages,
		MaxTokens:          cfg.CompletionCfg.MaxTokens,
		Temperature:        cfg.CompletionCfg.Temperature,
		TranscriptTimeout:  defaultTranscriptTimeout,
	}
}

// ChatUsecase orchestrates retrieval-augmented chat turns.
type ChatUsecase struct {
	store       *conversation.Store
	retriever   Retriever
	completion  CompletionClient
	transcripts repository.TranscriptRepository
	policy      sanitizer.ContentPolicy
	opts        Options
	logger      *zap.Logger
}

const defaultTranscriptTimeout = 5 * time.Second

func NewUsecase(
	store *conversation.Store,
	retriever Retriever,
	completion CompletionClient,
	transcripts repository.TranscriptRepository,
	opts Options,
	logger *zap.Logger,
) *ChatUsecase {
	if opts.TranscriptTimeout <= 0 {
		opts.TranscriptTimeout = defaultTranscriptTimeout
	}

	return &ChatUsecase{
		store:       store,
		retriever:   retriever,
		completion:  completion,
		transcripts: transcripts,
		policy:      sanitizer.Default,
		opts:        opts,
		logger:      logger,
	}
}

// StartSession opens a conversation holding only the system prompt.
func (uc *ChatUsecase) StartSession(ctx context.Context) entity.Session {
	ctx = logger.WithFallback(ctx, uc.logger)

	conv := uc.store.Create()
	session, _ := conv.Snapshot()

	ctxzap.Info(ctx, "chat session started", zap.String("session_id", session.ID))

	return session
}

// GetResponse runs one turn. Upstream failures never surface as errors: the
// reply then carries a fallback sentence and the buffer keeps no assistant
// message for the turn. The returned error is limited to an invalid session id.
func (uc *ChatUsecase) GetResponse(ctx context.Context, sessionID, userInput string) (*entity.Reply, error) {
	ctx = logger.WithFallback(ctx, uc.logger)

	conv, created, err := uc.store.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithSession(ctx, conv.ID())
	ctx = logger.WithAction(ctx, "chat_turn")
	if created {
		ctxzap.Info(ctx, "chat session created on first message")
	}

	reply := &entity.Reply{SessionID: conv.ID()}

	err = conv.Do(func(buf *conversation.Buffer) error {
		buf.Append(entity.NewMessage(entity.RoleUser, userInput))

		docs := uc.retriever.Retrieve(ctx, userInput)
		for _, doc := range docs {
			buf.Append(entity.NewMessage(entity.RoleSystem, formatContext(doc)))
		}
		reply.Sources = docs

		buf.EnforceLimit(uc.opts.MaxHistoryMessages)

		text, err := uc.completion.Complete(ctx, buf.ToCompletionPayload(uc.policy), uc.opts.MaxTokens, uc.opts.Temperature)
		if err != nil {
			return err
		}

		buf.Append(entity.NewMessage(entity.RoleAssistant, text))
		buf.EnforceLimit(uc.opts.MaxHistoryMessages)
		reply.Text = text

		uc.recordExchange(ctx, conv.ID(), userInput, text)

		return nil
	})
	if err != nil {
		kind := entity.KindOf(err)
		ctxzap.Error(ctx, "completion failed, returning fallback",
			zap.String("error_kind", string(kind)),
			zap.Error(err),
		)

		reply.Text = entity.FallbackMessage(kind)
		reply.Fallback = true
		reply.ErrorKind = kind

		return reply, nil
	}

	ctxzap.Info(ctx, "chat turn completed",
		zap.Int("sources", len(reply.Sources)),
		zap.Int("reply_length", len(reply.Text)),
	)

	return reply, nil
}

// History returns a copy of the session's buffer.
func (uc *ChatUsecase) History(_ context.Context, sessionID string) (entity.Session, []entity.Message, error) {
	conv, err := uc.store.Get(sessionID)
	if err != nil {
		return entity.Session{}, nil, err
	}

	session, messages := conv.Snapshot()
	return session, messages, nil
}

// ResetSession forgets the buffer. The stored transcript is kept.
func (uc *ChatUsecase) ResetSession(ctx context.Context, sessionID string) error {
	ctx = logger.WithFallback(ctx, uc.logger)

	if err := uc.store.Delete(sessionID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "chat session reset", zap.String("session_id", sessionID))

	return nil
}

// Transcript returns the persisted exchanges of a session, which outlive the
// in-memory buffer.
func (uc *ChatUsecase) Transcript(ctx context.Context, sessionID string) ([]*entity.TranscriptEntry, error) {
	ctx = logger.WithFallback(ctx, uc.logger)

	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id", entity.ErrInvalidParameter)
	}
	if uc.transcripts == nil {
		return nil, entity.ErrNoTranscript
	}

	entries, err := uc.transcripts.GetSessionTranscript(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	if len(entries) == 0 {
		return nil, entity.ErrNoTranscript
	}

	return entries, nil
}

func (uc *ChatUsecase) recordExchange(ctx context.Context, sessionID, userText, assistantText string) {
	if uc.transcripts == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.TranscriptTimeout)
	defer cancel()

	if err := uc.transcripts.AppendExchange(writeCtx, sessionID, userText, assistantText); err != nil {
		ctxzap.Error(ctx, "failed to record transcript", zap.Error(err))
	}
}

// formatContext renders a retrieved document as a system message.
func formatContext(doc entity.RetrievedDocument) string {
	if doc.Path == "" {
		return "Project context: " + doc.Content
	}
	return fmt.Sprintf("Project context [%s]: %s", doc.Path, doc.Content)
}
