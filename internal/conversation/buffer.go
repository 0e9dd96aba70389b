// Package conversation keeps the bounded, per-session message history that
// is sent to the completion service on every turn.
package conversation

import (
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/sanitizer"
)

// Buffer is an ordered list of messages whose first entry, the system
// instruction, is pinned and survives every trim. Buffer is not safe for
// concurrent use; Conversation serializes access.
type Buffer struct {
	messages []entity.Message
}

func NewBuffer(systemPrompt string) *Buffer {
	return &Buffer{
		messages: []entity.Message{entity.NewMessage(entity.RoleSystem, systemPrompt)},
	}
}

func (b *Buffer) Append(msg entity.Message) {
	b.messages = append(b.messages, msg)
}

// EnforceLimit keeps the pinned head plus the most recent limit-1 messages.
// A limit below 1 is treated as 1.
func (b *Buffer) EnforceLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	if len(b.messages) <= limit {
		return
	}

	tail := b.messages[len(b.messages)-(limit-1):]

	trimmed := make([]entity.Message, 0, limit)
	trimmed = append(trimmed, b.messages[0])
	trimmed = append(trimmed, tail...)
	b.messages = trimmed
}

func (b *Buffer) Len() int {
	return len(b.messages)
}

// Messages returns a copy of the buffer contents in conversation order.
func (b *Buffer) Messages() []entity.Message {
	out := make([]entity.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// ToCompletionPayload renders the buffer as completion messages with every
// content passed through policy.
func (b *Buffer) ToCompletionPayload(policy sanitizer.ContentPolicy) []entity.CompletionMessage {
	if policy == nil {
		policy = sanitizer.Default
	}

	payload := make([]entity.CompletionMessage, 0, len(b.messages))
	for _, msg := range b.messages {
		payload = append(payload, entity.CompletionMessage{
			Role:    string(msg.Role),
			Content: policy.Sanitize(msg.Content),
		})
	}
	return payload
}
