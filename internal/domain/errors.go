package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds of a pipeline or transcription run. Every error returned by a
// usecase wraps exactly one of them.
var (
	// ErrInvalidInput signals a request that cannot be processed as given.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTranslation signals a failed normalization to English.
	ErrTranslation = errors.New("translation failed")
	// ErrEmbedding signals a failed vectorization.
	ErrEmbedding = errors.New("embedding failed")
	// ErrSearch signals a failed similarity lookup.
	ErrSearch = errors.New("similarity search failed")
	// ErrSynthesis signals a failed text generation (answer or transcript).
	ErrSynthesis = errors.New("generation failed")
	// ErrDownload signals a failed audio fetch.
	ErrDownload = errors.New("audio download failed")
	// ErrPersistence signals a failed record store write.
	ErrPersistence = errors.New("persistence failed")
)

// Infrastructure errors raised by adapters below the usecase layer.
var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals that a provider refused the call on quota.
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderError signals a generation or embedding provider failure.
	ErrProviderError = errors.New("provider error")
	// ErrUnsupportedMedia signals a prompt the provider cannot accept.
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// DownloadError wraps ErrDownload with the upstream HTTP status.
type DownloadError struct {
	Status     int
	StatusText string
}

func (e *DownloadError) Error() string {
	text := e.StatusText
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: %d %s", ErrDownload.Error(), e.Status, text)
}

func (e *DownloadError) Unwrap() error { return ErrDownload }

// NewDownloadError creates a download error for a non-2xx fetch.
func NewDownloadError(status int, statusText string) error {
	return &DownloadError{Status: status, StatusText: statusText}
}
