package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
)

// Validator checks chat API input
type Validator struct {
	cfg config.ChatConfig
}

func NewValidator(cfg config.ChatConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateChatRequest validates ChatRequest
func (v *Validator) ValidateChatRequest(req *entity.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	if n := utf8.RuneCountInString(req.Message); n > v.cfg.MaxMessageLength {
		return fmt.Errorf("%w: %d characters (max %d)", entity.ErrMessageTooLong, n, v.cfg.MaxMessageLength)
	}

	if req.SessionID != "" {
		if err := ValidateSessionID(req.SessionID); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSessionID checks that id is a UUID
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: session_id must be a UUID", entity.ErrInvalidParameter)
	}
	return nil
}

// ParseResultFormat defaults an empty value to JSON
func ParseResultFormat(raw string) (entity.ResultFormat, error) {
	if raw == "" {
		return entity.FormatJSON, nil
	}

	format := entity.ResultFormat(strings.ToLower(raw))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: format must be one of json, markdown, docx, pdf", entity.ErrInvalidFormat)
	}

	return format, nil
}
