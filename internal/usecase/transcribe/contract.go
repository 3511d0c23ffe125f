package transcribe

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Fetcher downloads a remote resource. Non-2xx responses are *domain.DownloadError.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Generator produces text from a prompt with inline media.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (domain.GenerationResult, error)
}
