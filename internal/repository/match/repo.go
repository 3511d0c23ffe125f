package match

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gramgyan/gramgyan/internal/db"
	dommatch "github.com/gramgyan/gramgyan/internal/domain/match"
)

const validatedFilterField = "validated"

// store is the consumer interface for similarity ranking (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo ranks validated reports by vector similarity.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a match repository over the report index.
// keyPrefix is stripped from hit keys to recover report IDs.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// MatchReports returns up to count validated reports whose similarity to vector
// is at least threshold, best first.
func (r *Repo) MatchReports(
	ctx context.Context, vector []float32, threshold float64, count int,
) ([]dommatch.Match, error) {
	if count <= 0 {
		return nil, errors.New("match count must be positive")
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Filter:       db.TagFilter(validatedFilterField, "true"),
		Vector:       vector,
		K:            count,
		ReturnFields: []string{"solution_text"},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", r.indexName, err)
	}
	if sr == nil {
		return nil, nil
	}

	entries := slices.Clone(sr.Entries)
	slices.SortStableFunc(entries, func(a, b db.SearchEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	out := make([]dommatch.Match, 0, min(count, len(entries)))
	for _, e := range entries {
		if e.Score < threshold {
			break
		}
		if len(out) == count {
			break
		}
		id := strings.TrimPrefix(e.Key, r.keyPrefix)
		out = append(out, dommatch.New(id, e.Score, e.Fields["solution_text"]))
	}
	return out, nil
}
