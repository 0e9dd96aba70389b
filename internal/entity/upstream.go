package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of calls to external services.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindUpstreamHTTP      ErrorKind = "upstream_http"
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
	ErrorKindGeneric           ErrorKind = "generic"
)

// UpstreamError is returned by every client boundary (embedding, search,
// completion). Op names the failed operation.
type UpstreamError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(kind ErrorKind, op string, err error) *UpstreamError {
	return &UpstreamError{Kind: kind, Op: op, Err: err}
}

// KindOf reports the ErrorKind carried by err, or ErrorKindGeneric for any
// other non-nil error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Kind
	}

	return ErrorKindGeneric
}

// User-facing fallback sentences returned instead of a model reply.
const (
	FallbackUpstreamHTTP      = "Error while contacting the completion service."
	FallbackMalformedResponse = "Error while processing the completion service response."
	FallbackGeneric           = "An error occurred while generating the response."
)

func FallbackMessage(kind ErrorKind) string {
	switch kind {
	case ErrorKindUpstreamHTTP:
		return FallbackUpstreamHTTP
	case ErrorKindMalformedResponse:
		return FallbackMalformedResponse
	default:
		return FallbackGeneric
	}
}
