package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/report"
)

// Service marks reports as carrying a validated answer, which makes them
// reuse candidates for later questions.
type Service struct {
	repo Repository
}

// New creates a review service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Validate stores answer as the validated answer of reportID.
func (s *Service) Validate(ctx context.Context, reportID, answer string) error {
	if strings.TrimSpace(reportID) == "" {
		return fmt.Errorf("report_id is required: %w", domain.ErrInvalidInput)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("answer is required: %w", domain.ErrInvalidInput)
	}
	if len(answer) > report.MaxTextSize {
		return fmt.Errorf("answer too large (max %d bytes): %w", report.MaxTextSize, domain.ErrInvalidInput)
	}

	if err := s.repo.MarkValidated(ctx, reportID, answer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("validate report: %w", err)
		}
		return fmt.Errorf("%w: validate report: %w", domain.ErrPersistence, err)
	}
	return nil
}
