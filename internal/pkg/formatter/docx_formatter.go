package formatter

import (
	"bytes"
	"strings"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(sessionID string, entries []*entity.TranscriptEntry) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(baseTitle)

	doc.AddParagraph().AddRun().AddText("Session " + sessionID)

	for _, e := range entries {
		headPar := doc.AddParagraph()
		headPar.SetStyle("Heading2")
		headPar.AddRun().AddText(entryHeading(e))

		// Replies often span several lines; each becomes its own break.
		bodyRun := doc.AddParagraph().AddRun()
		for i, line := range strings.Split(e.Text, "\n") {
			if i > 0 {
				bodyRun.AddBreak()
			}
			bodyRun.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
