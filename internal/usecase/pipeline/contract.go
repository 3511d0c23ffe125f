package pipeline

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain/match"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
)

// Normalizer brings report text into English.
type Normalizer interface {
	Normalize(ctx context.Context, original, translated string) (string, error)
}

// Embedder vectorizes normalized text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Resolver looks up a validated answer for a question vector. A nil match means none qualified.
type Resolver interface {
	Resolve(ctx context.Context, vector []float32) (*match.Match, error)
}

// Synthesizer builds solutions for question reports.
type Synthesizer interface {
	FromMatch(reportID string, m match.Match) (solution.Solution, error)
	FromScratch(ctx context.Context, reportID, question string) (solution.Solution, error)
}

// ReportWriter stores the normalized state of a report.
type ReportWriter interface {
	UpdateNormalized(ctx context.Context, r report.Report) error
}

// SolutionWriter stores new solutions.
type SolutionWriter interface {
	Insert(ctx context.Context, s solution.Solution) error
}

// EventPublisher announces processed reports.
type EventPublisher interface {
	PublishProcessed(ctx context.Context, e report.ProcessedEvent) error
}
