package resolve

import (
	"context"
	"fmt"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/match"
)

// DefaultThreshold is the minimum cosine similarity for reusing an answer.
const DefaultThreshold = 0.80

// Service decides whether a question already has a validated answer.
type Service struct {
	ranker    Ranker
	threshold float64
	count     int
}

// New creates a resolver with the default threshold and a single candidate.
func New(ranker Ranker) *Service {
	return &Service{ranker: ranker, threshold: DefaultThreshold, count: 1}
}

// WithThreshold overrides the acceptance threshold. Values outside (0, 1] are ignored.
func (s *Service) WithThreshold(threshold float64) *Service {
	if threshold > 0 && threshold <= 1 {
		s.threshold = threshold
	}
	return s
}

// WithCount overrides how many candidates the ranker is asked for.
// Only the first candidate is ever accepted.
func (s *Service) WithCount(count int) *Service {
	if count > 0 {
		s.count = count
	}
	return s
}

// Resolve returns the top accepted match, or nil when nothing qualifies.
// Ranker failures are returned as ErrSearch, never as "no match".
func (s *Service) Resolve(ctx context.Context, vector []float32) (*match.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty: %w", domain.ErrInvalidInput)
	}

	matches, err := s.ranker.MatchReports(ctx, vector, s.threshold, s.count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	top := matches[0]
	return &top, nil
}
