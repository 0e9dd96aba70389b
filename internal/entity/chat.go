package entity

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single role-tagged conversation entry. Values are never
// mutated after construction.
type Message struct {
	Role    Role
	Content string
}

func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Session identifies one user's conversation with the assistant.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Reply is the outcome of one orchestrated chat turn. Text is always set:
// either the model answer or a user-facing fallback sentence.
type Reply struct {
	SessionID string
	Text      string
	Sources   []RetrievedDocument
	Fallback  bool
	ErrorKind ErrorKind
}

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// TranscriptEntry is one persisted line of the user-visible conversation.
type TranscriptEntry struct {
	ID        string
	SessionID string
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}
