package validator

import (
	"strings"
	"testing"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChatRequest(t *testing.T) {
	v := NewValidator(config.ChatConfig{MaxMessageLength: 10})

	tests := []struct {
		name string
		req  entity.ChatRequest
		want error
	}{
		{name: "ok without session", req: entity.ChatRequest{Message: "hello"}},
		{name: "ok with session", req: entity.ChatRequest{Message: "hello", SessionID: uuid.NewString()}},
		{name: "empty", req: entity.ChatRequest{Message: "  "}, want: entity.ErrMissingField},
		{name: "too long", req: entity.ChatRequest{Message: strings.Repeat("я", 11)}, want: entity.ErrMessageTooLong},
		{name: "max length counts runes", req: entity.ChatRequest{Message: strings.Repeat("я", 10)}},
		{name: "bad session", req: entity.ChatRequest{Message: "hi", SessionID: "123"}, want: entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChatRequest(&tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseResultFormat(t *testing.T) {
	f, err := ParseResultFormat("")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatJSON, f)

	f, err = ParseResultFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatPDF, f)

	_, err = ParseResultFormat("xlsx")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}
