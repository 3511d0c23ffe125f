package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
)

const translatePrompt = "Translate the following agricultural text to clear English. " +
	"Return ONLY the English translation.\n\n"

// Service brings report text into English.
type Service struct {
	gen Generator
}

// New creates a normalization service.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// Normalize returns translated verbatim when it is non-empty. Otherwise it
// asks the generator for an English translation of original.
func (s *Service) Normalize(ctx context.Context, original, translated string) (string, error) {
	if strings.TrimSpace(translated) != "" {
		return translated, nil
	}
	if strings.TrimSpace(original) == "" {
		return "", fmt.Errorf("original text is required without a translation: %w", domain.ErrInvalidInput)
	}

	res, err := s.gen.Generate(ctx, domain.TextPrompt(translatePrompt+original))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}

	domain.UsageFromContext(ctx).AddGeneration(res)

	english := strings.TrimSpace(res.Text)
	if english == "" {
		return "", fmt.Errorf("empty translation: %w", domain.ErrTranslation)
	}
	return english, nil
}
