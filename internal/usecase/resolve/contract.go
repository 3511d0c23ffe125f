package resolve

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain/match"
)

// Ranker returns the best validated reports for a vector, best first,
// each with a similarity of at least threshold.
type Ranker interface {
	MatchReports(ctx context.Context, vector []float32, threshold float64, count int) ([]match.Match, error)
}
