package gramgyan

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput = domain.ErrInvalidInput
	ErrNotFound     = domain.ErrNotFound
	ErrTranslation  = domain.ErrTranslation
	ErrEmbedding    = domain.ErrEmbedding
	ErrSearch       = domain.ErrSearch
	ErrSynthesis    = domain.ErrSynthesis
	ErrDownload     = domain.ErrDownload
	ErrPersistence  = domain.ErrPersistence
)

// ErrUnauthorized is returned when the server rejects the API key.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gramgyan: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Is matches status-only kinds by code and upstream failure kinds by the
// sentinel text the server embeds in its message.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrTranslation, ErrEmbedding, ErrSearch, ErrSynthesis, ErrDownload, ErrPersistence:
		return e.Status >= http.StatusInternalServerError && strings.Contains(e.Message, target.Error())
	}
	return false
}
