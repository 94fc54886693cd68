// Package apperr defines the error taxonomy shared by the hosting client, the
// completion clients and the HTTP handlers, plus the single mapping from an
// error to an HTTP status and a client-safe message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ContextTooLargeMessage is returned to clients when the completion API
// rejected the prompt for exceeding the model's context window.
const ContextTooLargeMessage = "The repository is too large or complex to summarize in a single request. Please try a smaller or simpler repository."

const internalMessage = "Internal server error"

// ValidationError reports a missing or malformed request parameter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports a request rejected by the origin policy.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string { return "Forbidden" }

// RateLimitedError reports that the caller exceeded its request window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string { return "Rate limit exceeded. Try again later." }

// RetryAfterSeconds rounds the remaining window up to whole seconds.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// ConfigurationError reports a server credential that is absent at request time.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Missing %s env var", e.Setting)
}

// UpstreamError is a non-success response from the hosting or completion API.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	// Err is the underlying transport or decode error; it is logged, never echoed.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s API error: %d", e.Service, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ContextTooLargeError is an UpstreamError classified as a context window overflow.
type ContextTooLargeError struct {
	Upstream *UpstreamError
}

func (e *ContextTooLargeError) Error() string {
	if e.Upstream == nil {
		return "context length exceeded"
	}
	return "context length exceeded: " + e.Upstream.Error()
}

func (e *ContextTooLargeError) Unwrap() error {
	if e.Upstream == nil {
		return nil
	}
	return e.Upstream
}

// Status maps err onto the HTTP status the client receives.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var (
		validation *ValidationError
		forbidden  *ForbiddenError
		limited    *RateLimitedError
		config     *ConfigurationError
		tooLarge   *ContextTooLargeError
		upstream   *UpstreamError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &config):
		return http.StatusInternalServerError
	case errors.As(err, &upstream):
		if upstream.Status >= 400 && upstream.Status <= 599 {
			return upstream.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text echoed to clients. Unclassified errors never leak.
func PublicMessage(err error) string {
	var (
		validation *ValidationError
		forbidden  *ForbiddenError
		limited    *RateLimitedError
		config     *ConfigurationError
		tooLarge   *ContextTooLargeError
		upstream   *UpstreamError
	)
	switch {
	case errors.As(err, &tooLarge):
		return ContextTooLargeMessage
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &forbidden):
		return forbidden.Error()
	case errors.As(err, &limited):
		return limited.Error()
	case errors.As(err, &config):
		return config.Error()
	case errors.As(err, &upstream):
		return upstream.Error()
	default:
		return internalMessage
	}
}
