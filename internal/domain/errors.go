package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank question from the caller.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals that the vector index could not be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// ProviderStatusError wraps ErrEmbeddingProviderError with the HTTP status
// and response body returned by the embedding provider, so callers can tell
// transient failures from permanent ones without string inspection.
type ProviderStatusError struct {
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrEmbeddingProviderError.Error(), e.StatusCode, e.Body)
}

func (e *ProviderStatusError) Unwrap() error { return ErrEmbeddingProviderError }

// NewProviderStatusError creates a provider error carrying status and body.
func NewProviderStatusError(status int, body string) error {
	return &ProviderStatusError{StatusCode: status, Body: body}
}
