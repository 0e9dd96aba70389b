// Package sanitizer holds the content policy applied to every message
// before it is sent to the completion service.
package sanitizer

import "strings"

// ContentPolicy rewrites message content before transmission.
type ContentPolicy interface {
	Sanitize(content string) string
}

// SingleLinePolicy flattens content into one line that is safe to embed in
// a JSON string field: newlines, carriage returns, tabs and backslashes
// become spaces and double quotes become single quotes.
type SingleLinePolicy struct{}

var singleLineReplacer = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\\", " ",
	"\t", " ",
	`"`, "'",
)

func (SingleLinePolicy) Sanitize(content string) string {
	return strings.TrimSpace(singleLineReplacer.Replace(content))
}

// Default is the policy used by the chat service.
var Default ContentPolicy = SingleLinePolicy{}
