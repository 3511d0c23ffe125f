package chi

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware answers preflight requests with 200 and decorates responses
// with the configured allow headers.
func CORSMiddleware(allowedOrigins, allowedHeaders []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       allowedHeaders,
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}
