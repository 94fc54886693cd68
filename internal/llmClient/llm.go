package llmclient

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"issuescout/internal/apperr"
)

// Completer sends one single-turn prompt to a chat model and returns the text
// of the first choice. Ready reports a missing credential without calling
// the provider.
type Completer interface {
	Name() string
	Ready() error
	Complete(ctx context.Context, prompt string) (string, error)
}

// contextLengthCodes are structured error codes providers use for an
// oversized prompt.
var contextLengthCodes = map[string]bool{
	"context_length_exceeded": true,
}

// contextLengthPhrase is the wording fallback for providers that report no code.
var contextLengthPhrase = regexp.MustCompile(`(?i)context length|maximum context length|too many tokens|exceeds the maximum number of tokens`)

// ClassifyError turns a non-success completion response into either a
// ContextTooLargeError or the UpstreamError itself. A structured code wins;
// the message is matched only when no code identifies the failure.
func ClassifyError(up *apperr.UpstreamError, code string) error {
	if up == nil {
		return nil
	}
	if contextLengthCodes[strings.TrimSpace(code)] || contextLengthPhrase.MatchString(up.Message) {
		return &apperr.ContextTooLargeError{Upstream: up}
	}
	return up
}

// IsContextTooLarge reports whether err was classified as a context window overflow.
func IsContextTooLarge(err error) bool {
	var tooLarge *apperr.ContextTooLargeError
	return errors.As(err, &tooLarge)
}
