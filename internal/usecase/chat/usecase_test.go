package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/futig/rag-chat/internal/conversation"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const systemPrompt = "S"

type fakeRetriever struct {
	docs []entity.RetrievedDocument
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string) []entity.RetrievedDocument {
	return f.docs
}

type fakeCompletion struct {
	mu    sync.Mutex
	reply string
	err   error
	got   [][]entity.CompletionMessage
}

func (f *fakeCompletion) Complete(_ context.Context, msgs []entity.CompletionMessage, _ int, _ *float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.got = append(f.got, msgs)
	return f.reply, f.err
}

type fakeTranscripts struct {
	mu      sync.Mutex
	entries map[string][]*entity.TranscriptEntry
	err     error
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{entries: make(map[string][]*entity.TranscriptEntry)}
}

func (f *fakeTranscripts) AppendExchange(_ context.Context, sessionID, userText, assistantText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.entries[sessionID] = append(f.entries[sessionID],
		&entity.TranscriptEntry{SessionID: sessionID, Speaker: entity.SpeakerUser, Text: userText},
		&entity.TranscriptEntry{SessionID: sessionID, Speaker: entity.SpeakerAssistant, Text: assistantText},
	)
	return nil
}

func (f *fakeTranscripts) GetSessionTranscript(_ context.Context, sessionID string) ([]*entity.TranscriptEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.entries[sessionID], nil
}

type fixture struct {
	uc          *ChatUsecase
	store       *conversation.Store
	retriever   *fakeRetriever
	completion  *fakeCompletion
	transcripts *fakeTranscripts
}

func newFixture(t *testing.T, maxHistory int) *fixture {
	t.Helper()

	f := &fixture{
		store:       conversation.NewStore(systemPrompt, time.Hour, time.Hour),
		retriever:   &fakeRetriever{},
		completion:  &fakeCompletion{reply: "fixed answer"},
		transcripts: newFakeTranscripts(),
	}
	f.uc = NewUsecase(f.store, f.retriever, f.completion, f.transcripts, Options{
		MaxHistoryMessages: maxHistory,
		MaxTokens:          500,
	}, zap.NewNop())

	return f
}

func TestGetResponse_EndToEnd(t *testing.T) {
	f := newFixture(t, 7)
	f.retriever.docs = []entity.RetrievedDocument{{ID: "1", Content: "X handles auth", Path: "auth.ts", Score: 1.9}}
	ctx := context.Background()

	session := f.uc.StartSession(ctx)
	reply, err := f.uc.GetResponse(ctx, session.ID, "What does module X do?")
	require.NoError(t, err)

	assert.Equal(t, "fixed answer", reply.Text)
	assert.False(t, reply.Fallback)
	assert.Equal(t, session.ID, reply.SessionID)
	assert.Equal(t, f.retriever.docs, reply.Sources)

	require.Len(t, f.completion.got, 1)
	payload := f.completion.got[0]
	require.Len(t, payload, 3)
	assert.Equal(t, entity.CompletionMessage{Role: "system", Content: "S"}, payload[0])
	assert.Equal(t, entity.CompletionMessage{Role: "user", Content: "What does module X do?"}, payload[1])
	assert.Equal(t, entity.CompletionMessage{Role: "system", Content: "Project context [auth.ts]: X handles auth"}, payload[2])

	_, history, err := f.uc.History(ctx, session.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(history), 7)
	assert.Equal(t, entity.NewMessage(entity.RoleAssistant, "fixed answer"), history[len(history)-1])

	entries := f.transcripts.entries[session.ID]
	require.Len(t, entries, 2)
	assert.Equal(t, "What does module X do?", entries[0].Text)
	assert.Equal(t, "fixed answer", entries[1].Text)
}

func TestGetResponse_FallbackOnCompletionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "upstream http",
			err:  entity.NewUpstreamError(entity.ErrorKindUpstreamHTTP, "complete", errors.New("500")),
			want: entity.FallbackUpstreamHTTP,
		},
		{
			name: "malformed",
			err:  entity.NewUpstreamError(entity.ErrorKindMalformedResponse, "complete", errors.New("no choices")),
			want: entity.FallbackMalformedResponse,
		},
		{
			name: "generic",
			err:  errors.New("boom"),
			want: entity.FallbackGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 7)
			f.completion.err = tt.err
			ctx := context.Background()

			session := f.uc.StartSession(ctx)
			reply, err := f.uc.GetResponse(ctx, session.ID, "hello")
			require.NoError(t, err)

			assert.Equal(t, tt.want, reply.Text)
			assert.True(t, reply.Fallback)

			_, history, err := f.uc.History(ctx, session.ID)
			require.NoError(t, err)
			for _, msg := range history {
				assert.NotEqual(t, entity.RoleAssistant, msg.Role)
			}
			assert.Empty(t, f.transcripts.entries[session.ID])
		})
	}
}

func TestGetResponse_BufferStaysWithinLimit(t *testing.T) {
	f := newFixture(t, 4)
	f.retriever.docs = []entity.RetrievedDocument{
		{ID: "1", Content: "a", Path: "a.go"},
		{ID: "2", Content: "b"},
	}
	ctx := context.Background()
	session := f.uc.StartSession(ctx)

	for i := 0; i < 5; i++ {
		_, err := f.uc.GetResponse(ctx, session.ID, "question")
		require.NoError(t, err)

		_, history, err := f.uc.History(ctx, session.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(history), 4)
		assert.Equal(t, entity.NewMessage(entity.RoleSystem, systemPrompt), history[0])
	}

	for _, payload := range f.completion.got {
		assert.LessOrEqual(t, len(payload), 4)
		assert.Equal(t, "S", payload[0].Content)
	}
}

func TestGetResponse_ContextWithoutPath(t *testing.T) {
	f := newFixture(t, 7)
	f.retriever.docs = []entity.RetrievedDocument{{ID: "1", Content: "plain \"quoted\"\nline"}}

	_, err := f.uc.GetResponse(context.Background(), "", "hi")
	require.NoError(t, err)

	payload := f.completion.got[0]
	assert.Equal(t, "Project context: plain 'quoted' line", payload[2].Content)
}

func TestGetResponse_CreatesSessionWhenMissing(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()

	reply, err := f.uc.GetResponse(ctx, "", "hi")
	require.NoError(t, err)
	_, err = uuid.Parse(reply.SessionID)
	require.NoError(t, err)

	id := uuid.New().String()
	reply, err = f.uc.GetResponse(ctx, id, "hi")
	require.NoError(t, err)
	assert.Equal(t, id, reply.SessionID)
	assert.Equal(t, 2, f.store.Count())
}

func TestGetResponse_InvalidSessionID(t *testing.T) {
	f := newFixture(t, 7)

	_, err := f.uc.GetResponse(context.Background(), "not-a-uuid", "hi")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	assert.Empty(t, f.completion.got)
}

func TestGetResponse_TranscriptFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, 7)
	f.transcripts.err = errors.New("db down")

	reply, err := f.uc.GetResponse(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "fixed answer", reply.Text)
	assert.False(t, reply.Fallback)
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()

	a := f.uc.StartSession(ctx)
	b := f.uc.StartSession(ctx)

	_, err := f.uc.GetResponse(ctx, a.ID, "only in a")
	require.NoError(t, err)

	_, history, err := f.uc.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []entity.Message{entity.NewMessage(entity.RoleSystem, systemPrompt)}, history)
}

func TestResetSession(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()
	session := f.uc.StartSession(ctx)

	require.NoError(t, f.uc.ResetSession(ctx, session.ID))

	_, _, err := f.uc.History(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	assert.ErrorIs(t, f.uc.ResetSession(ctx, session.ID), entity.ErrSessionNotFound)
}

func TestTranscript(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()
	session := f.uc.StartSession(ctx)

	_, err := f.uc.Transcript(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrNoTranscript)

	_, err = f.uc.GetResponse(ctx, session.ID, "hi")
	require.NoError(t, err)

	entries, err := f.uc.Transcript(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = f.uc.Transcript(ctx, "bad")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestGetResponse_ConcurrentTurnsOnOneSession(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()
	session := f.uc.StartSession(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.GetResponse(ctx, session.ID, "hi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, history, err := f.uc.History(ctx, session.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(history), 7)
	assert.Len(t, f.transcripts.entries[session.ID], 40)
}

func TestGetResponse_LogsFallbackWithoutRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	completion := &fakeCompletion{err: entity.NewUpstreamError(entity.ErrorKindUpstreamHTTP, "complete", errors.New("503"))}
	uc := NewUsecase(conversation.NewStore(systemPrompt, time.Hour, time.Hour), &fakeRetriever{}, completion, nil,
		Options{MaxHistoryMessages: 7}, zap.New(core))

	reply, err := uc.GetResponse(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)

	failed := logs.FilterMessage("completion failed, returning fallback").All()
	require.Len(t, failed, 1)
	assert.Equal(t, reply.SessionID, failed[0].ContextMap()["session_id"])
}
