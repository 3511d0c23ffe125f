package chi

import (
	"errors"
	"net/http"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers maps failure kinds to statuses, first match wins.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrDownload, http.StatusBadGateway),
		sentinelHandler(domain.ErrTranslation, http.StatusBadGateway),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway),
		sentinelHandler(domain.ErrSearch, http.StatusBadGateway),
		sentinelHandler(domain.ErrSynthesis, http.StatusBadGateway),
		sentinelHandler(domain.ErrPersistence, http.StatusInternalServerError),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The response carries the error message, as a pipeline failure is reported
// with the message of the stage that failed.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, err.Error())
		return true
	}
}
