package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Service turns normalized English text into a vector.
type Service struct {
	embedder Embedder
}

// New creates an embedding service.
func New(embedder Embedder) *Service {
	return &Service{embedder: embedder}
}

// Embed issues exactly one provider call for non-blank text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text to embed is empty: %w", domain.ErrInvalidInput)
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	domain.UsageFromContext(ctx).AddEmbedding(res.TotalTokens)
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("provider returned empty vector: %w", domain.ErrEmbedding)
	}
	return res.Embedding, nil
}
