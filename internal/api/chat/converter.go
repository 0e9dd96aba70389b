package chat

import "github.com/futig/rag-chat/internal/entity"

func toSessionDTO(session entity.Session) *entity.SessionDTO {
	return &entity.SessionDTO{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}
}

func toChatResponse(reply *entity.Reply) *entity.ChatResponse {
	sources := make([]entity.SourceDTO, 0, len(reply.Sources))
	for _, doc := range reply.Sources {
		sources = append(sources, entity.SourceDTO{
			FileName: doc.FileName,
			Path:     doc.Path,
			Score:    doc.Score,
		})
	}

	return &entity.ChatResponse{
		SessionID: reply.SessionID,
		Reply:     reply.Text,
		Fallback:  reply.Fallback,
		Sources:   sources,
	}
}

func toHistoryDTO(session entity.Session, messages []entity.Message) *entity.HistoryDTO {
	dto := &entity.HistoryDTO{
		SessionID: session.ID,
		Messages:  make([]entity.MessageDTO, 0, len(messages)),
	}
	for _, msg := range messages {
		dto.Messages = append(dto.Messages, entity.MessageDTO{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return dto
}

func toTranscriptDTO(sessionID string, entries []*entity.TranscriptEntry) *entity.TranscriptDTO {
	dto := &entity.TranscriptDTO{
		SessionID: sessionID,
		Entries:   make([]entity.TranscriptEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		dto.Entries = append(dto.Entries, entity.TranscriptEntryDTO{
			Speaker:   e.Speaker,
			Text:      e.Text,
			CreatedAt: e.CreatedAt,
		})
	}
	return dto
}
