package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
)

type mockReports struct {
	getFn func(ctx context.Context, id string) (report.Report, error)
	calls int
}

func (m *mockReports) Get(ctx context.Context, id string) (report.Report, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return report.Reconstruct(id, "text", "", report.Knowledge, "", "text", nil, report.Pending), nil
}

type mockSolutions struct {
	getFn func(ctx context.Context, id string) (solution.Solution, error)
	calls int
}

func (m *mockSolutions) Get(ctx context.Context, id string) (solution.Solution, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return solution.Reconstruct(id, "r-1", "answer", true, solution.Generated, time.Now()), nil
}

func TestReport(t *testing.T) {
	svc := New(&mockReports{}, &mockSolutions{})

	rep, err := svc.Report(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ID() != "r-1" || rep.Type() != report.Knowledge {
		t.Errorf("report = %s %s", rep.ID(), rep.Type())
	}
}

func TestSolution(t *testing.T) {
	svc := New(&mockReports{}, &mockSolutions{})

	sol, err := svc.Solution(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.ID() != "s-1" || sol.ReportID() != "r-1" {
		t.Errorf("solution = %s %s", sol.ID(), sol.ReportID())
	}
}

func TestLookup_MissingID(t *testing.T) {
	reports, solutions := &mockReports{}, &mockSolutions{}
	svc := New(reports, solutions)

	if _, err := svc.Report(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("report: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Solution(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("solution: expected ErrInvalidInput, got %v", err)
	}
	if reports.calls+solutions.calls != 0 {
		t.Error("repositories must not be called")
	}
}

func TestLookup_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    error
		notWant error
	}{
		{"not found", domain.ErrNotFound, domain.ErrNotFound, domain.ErrPersistence},
		{"store failure", errors.New("connection reset"), domain.ErrPersistence, domain.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(
				&mockReports{getFn: func(context.Context, string) (report.Report, error) {
					return report.Report{}, tc.repoErr
				}},
				&mockSolutions{getFn: func(context.Context, string) (solution.Solution, error) {
					return solution.Solution{}, tc.repoErr
				}},
			)

			_, repErr := svc.Report(context.Background(), "r-1")
			_, solErr := svc.Solution(context.Background(), "s-1")
			for _, err := range []error{repErr, solErr} {
				if !errors.Is(err, tc.want) || errors.Is(err, tc.notWant) {
					t.Errorf("error = %v, want %v and not %v", err, tc.want, tc.notWant)
				}
			}
		})
	}
}
