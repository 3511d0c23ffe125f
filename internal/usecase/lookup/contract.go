package lookup

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
)

// ReportReader loads stored reports.
type ReportReader interface {
	Get(ctx context.Context, id string) (report.Report, error)
}

// SolutionReader loads stored solutions.
type SolutionReader interface {
	Get(ctx context.Context, id string) (solution.Solution, error)
}
