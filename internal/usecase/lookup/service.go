package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
)

// Service reads back processed reports and their solutions.
type Service struct {
	reports   ReportReader
	solutions SolutionReader
}

// New creates a lookup service.
func New(reports ReportReader, solutions SolutionReader) *Service {
	return &Service{reports: reports, solutions: solutions}
}

// Report returns the stored report with the given ID.
func (s *Service) Report(ctx context.Context, id string) (report.Report, error) {
	if strings.TrimSpace(id) == "" {
		return report.Report{}, fmt.Errorf("report_id is required: %w", domain.ErrInvalidInput)
	}
	rep, err := s.reports.Get(ctx, id)
	if err != nil {
		return report.Report{}, readError("report", err)
	}
	return rep, nil
}

// Solution returns the stored solution with the given ID.
func (s *Service) Solution(ctx context.Context, id string) (solution.Solution, error) {
	if strings.TrimSpace(id) == "" {
		return solution.Solution{}, fmt.Errorf("solution_id is required: %w", domain.ErrInvalidInput)
	}
	sol, err := s.solutions.Get(ctx, id)
	if err != nil {
		return solution.Solution{}, readError("solution", err)
	}
	return sol, nil
}

func readError(what string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get %s: %w", what, err)
	}
	return fmt.Errorf("%w: get %s: %w", domain.ErrPersistence, what, err)
}
