package synthesis

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (domain.GenerationResult, error)
}
