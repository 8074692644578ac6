package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout       = errors.New("request timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrKeyNotFound   = errors.New("key not found")
	ErrIncomplete    = errors.New("product record incomplete")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractError wraps errors that occur while extracting product data.
// Extraction failures never escape the extractors themselves; this type
// exists for callers that fetch on behalf of an extraction pass.
type ExtractError struct {
	URL    string
	Source string // "ld+json", "appjson", "dom"
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (source=%s): %v", e.URL, e.Source, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur at the persistence boundary.
type StorageError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s, key=%q): %v", e.Backend, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
