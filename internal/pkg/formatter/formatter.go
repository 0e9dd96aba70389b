package formatter

import (
	"fmt"

	"github.com/futig/rag-chat/internal/entity"
)

const (
	baseTitle  = "Chat transcript"
	timeLayout = "2006-01-02 15:04:05 MST"
)

// Formatter renders a session transcript as a downloadable document.
type Formatter interface {
	Format(sessionID string, entries []*entity.TranscriptEntry) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func speakerLabel(s entity.Speaker) string {
	switch s {
	case entity.SpeakerUser:
		return "User"
	case entity.SpeakerAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

func entryHeading(e *entity.TranscriptEntry) string {
	return fmt.Sprintf("%s (%s)", speakerLabel(e.Speaker), e.CreatedAt.UTC().Format(timeLayout))
}
