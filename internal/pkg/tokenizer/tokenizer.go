package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the OpenAI embedding and chat models.
const DefaultEncoding = "cl100k_base"

// Tiktoken counts and truncates text by BPE tokens. The encoding is loaded
// on first use.
type Tiktoken struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func NewTiktoken(encoding string) *Tiktoken {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	return &Tiktoken{encoding: encoding}
}

func (t *Tiktoken) load() (*tiktoken.Tiktoken, error) {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encoding)
		if t.err != nil {
			t.err = fmt.Errorf("load tiktoken encoding %s: %w", t.encoding, t.err)
		}
	})
	return t.enc, t.err
}

func (t *Tiktoken) count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	enc, err := t.load()
	if err != nil {
		return 0, err
	}

	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate keeps the first maxTokens tokens of text. The bool reports
// whether anything was cut.
func (t *Tiktoken) Truncate(text string, maxTokens int) (string, bool, error) {
	if text == "" || maxTokens <= 0 {
		return text, false, nil
	}

	enc, err := t.load()
	if err != nil {
		return "", false, err
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false, nil
	}

	// A cut inside a multi-byte rune leaves a partial sequence at the end.
	return strings.ToValidUTF8(enc.Decode(tokens[:maxTokens]), ""), true, nil
}
