package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/match"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
)

// Service produces solutions for question reports.
type Service struct {
	gen Generator
}

// New creates a synthesis service.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// FromMatch reuses the validated answer of a matched report. No external call.
func FromMatch(reportID string, m match.Match) (solution.Solution, error) {
	sol, err := solution.NewReused(reportID, m.SolutionText())
	if err != nil {
		return solution.Solution{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}
	return sol, nil
}

// FromMatch reuses the validated answer of a matched report.
func (s *Service) FromMatch(reportID string, m match.Match) (solution.Solution, error) {
	return FromMatch(reportID, m)
}

// FromScratch asks the generator for a short practical answer to question.
func (s *Service) FromScratch(ctx context.Context, reportID, question string) (solution.Solution, error) {
	res, err := s.gen.Generate(ctx, domain.TextPrompt(answerPrompt(question)))
	if err != nil {
		return solution.Solution{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	domain.UsageFromContext(ctx).AddGeneration(res)

	text := strings.TrimSpace(res.Text)
	sol, err := solution.NewGenerated(reportID, text)
	if err != nil {
		return solution.Solution{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}
	return sol, nil
}

func answerPrompt(question string) string {
	return "You are an expert agriculturalist. A farmer has asked: \"" + question + "\". " +
		"Provide a short, practical, and helpful solution in simple language."
}
