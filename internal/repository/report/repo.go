package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gramgyan/gramgyan/internal/db"
	"github.com/gramgyan/gramgyan/internal/domain"
	domreport "github.com/gramgyan/gramgyan/internal/domain/report"
)

// Hash field names of a stored report.
const (
	FieldOriginalText   = "original_text"
	FieldTranslatedText = "translated_text"
	FieldType           = "type"
	FieldAudioURL       = "audio_url"
	FieldEnglishText    = "english_text"
	FieldStatus         = "status"
	FieldVector         = "__vector"
	FieldValidated      = "validated"
	FieldSolutionText   = "solution_text"
	FieldUpdatedAt      = "updated_at"
)

// store is the consumer interface for reports (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW index parameters for the report vector field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores reports as hashes under <prefix>report:<id>.
type Repo struct {
	store     store
	prefix    string
	vectorDim int
	hnsw      HNSWConfig
	now       func() time.Time
}

// New creates a report repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string, vectorDim int) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix, vectorDim: vectorDim, now: time.Now}
}

// WithHNSW sets HNSW index parameters. Zero values leave server defaults.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// IndexName returns the FT index over report hashes.
func (r *Repo) IndexName() string { return r.prefix + "reports:idx" }

func (r *Repo) key(id string) string { return r.prefix + "report:" + id }

// EnsureIndex creates the report search index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.IndexName(), err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.IndexName()).
		Prefix(r.prefix+"report:").
		Tag(FieldType, FieldStatus, FieldValidated).
		VectorHNSW(FieldVector, "vector", r.vectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.IndexName(), err)
	}
	return nil
}

// UpdateNormalized writes the English text, embedding and status of a report.
// The write is an upsert: a report unknown to the store is created with these fields.
func (r *Repo) UpdateNormalized(ctx context.Context, rep domreport.Report) error {
	if len(rep.Embedding()) == 0 {
		return errors.New("embedding is required")
	}
	if r.vectorDim > 0 && len(rep.Embedding()) != r.vectorDim {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(rep.Embedding()), r.vectorDim)
	}

	fields := map[string]string{
		FieldEnglishText: rep.EnglishText(),
		FieldVector:      vectorToBytes(rep.Embedding()),
		FieldStatus:      string(rep.Status()),
		FieldType:        string(rep.Type()),
		FieldUpdatedAt:   r.now().UTC().Format(time.RFC3339),
	}
	if rep.OriginalText() != "" {
		fields[FieldOriginalText] = rep.OriginalText()
	}
	if rep.TranslatedText() != "" {
		fields[FieldTranslatedText] = rep.TranslatedText()
	}
	if rep.AudioURL() != "" {
		fields[FieldAudioURL] = rep.AudioURL()
	}

	key := r.key(rep.ID())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// MarkValidated records a reviewer-approved answer on a report, making it a reuse candidate.
func (r *Repo) MarkValidated(ctx context.Context, id, answer string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}

	fields := map[string]string{
		FieldValidated:    "true",
		FieldSolutionText: answer,
		FieldUpdatedAt:    r.now().UTC().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a stored report by ID.
func (r *Repo) Get(ctx context.Context, id string) (domreport.Report, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domreport.Report{}, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
		}
		return domreport.Report{}, fmt.Errorf("hgetall %s: %w", key, err)
	}

	return domreport.Reconstruct(
		id,
		m[FieldOriginalText],
		m[FieldTranslatedText],
		domreport.Type(m[FieldType]),
		m[FieldAudioURL],
		m[FieldEnglishText],
		bytesToVector(m[FieldVector]),
		domreport.Status(m[FieldStatus]),
	), nil
}
