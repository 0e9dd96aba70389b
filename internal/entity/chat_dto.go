package entity

import "time"

type ResultFormat string

const (
	FormatJSON     ResultFormat = "json"
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type SourceDTO struct {
	FileName string  `json:"file_name,omitempty"`
	Path     string  `json:"path,omitempty"`
	Score    float64 `json:"score"`
}

type ChatResponse struct {
	SessionID string      `json:"session_id"`
	Reply     string      `json:"reply"`
	Fallback  bool        `json:"fallback,omitempty"`
	Sources   []SourceDTO `json:"sources"`
}

type SessionDTO struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageDTO struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type HistoryDTO struct {
	SessionID string       `json:"session_id"`
	Messages  []MessageDTO `json:"messages"`
}

type TranscriptEntryDTO struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type TranscriptDTO struct {
	SessionID string               `json:"session_id"`
	Entries   []TranscriptEntryDTO `json:"entries"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
