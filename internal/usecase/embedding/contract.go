package embedding

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
