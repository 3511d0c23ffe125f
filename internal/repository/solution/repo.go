package solution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gramgyan/gramgyan/internal/db"
	"github.com/gramgyan/gramgyan/internal/domain"
	domsolution "github.com/gramgyan/gramgyan/internal/domain/solution"
)

// store is the consumer interface for solutions (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo stores solutions as hashes under <prefix>solution:<id>.
type Repo struct {
	store  store
	prefix string
}

// New creates a solution repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(id string) string { return r.prefix + "solution:" + id }

// Insert writes a new solution. Every call creates a distinct record.
func (r *Repo) Insert(ctx context.Context, s domsolution.Solution) error {
	key := r.key(s.ID())
	fields := map[string]string{
		"report_id":     s.ReportID(),
		"solution_text": s.Text(),
		"ai_generated":  strconv.FormatBool(s.AIGenerated()),
		"origin":        string(s.Origin()),
		"created_at":    s.CreatedAt().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a stored solution by ID.
func (r *Repo) Get(ctx context.Context, id string) (domsolution.Solution, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsolution.Solution{}, fmt.Errorf("solution %s: %w", id, domain.ErrNotFound)
		}
		return domsolution.Solution{}, fmt.Errorf("hgetall %s: %w", key, err)
	}

	aiGenerated, _ := strconv.ParseBool(m["ai_generated"])
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])

	return domsolution.Reconstruct(
		id, m["report_id"], m["solution_text"], aiGenerated,
		domsolution.Origin(m["origin"]), createdAt,
	), nil
}
