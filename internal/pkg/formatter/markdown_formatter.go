package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/rag-chat/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(sessionID string, entries []*entity.TranscriptEntry) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\nSession `%s`\n", baseTitle, sessionID)

	for _, e := range entries {
		fmt.Fprintf(&buf, "\n### %s\n\n%s\n", entryHeading(e), e.Text)
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
