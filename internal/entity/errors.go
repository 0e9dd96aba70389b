package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoTranscript    = errors.New("transcript is empty")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMessageTooLong   = errors.New("message too long")

	// Ingestion errors
	ErrUnsupportedFile = errors.New("unsupported file")
)
