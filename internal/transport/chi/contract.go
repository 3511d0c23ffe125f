package chi

import (
	"context"

	"github.com/gramgyan/gramgyan/internal/domain/advisory"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
	"github.com/gramgyan/gramgyan/internal/domain/transcription"
	advisoryuc "github.com/gramgyan/gramgyan/internal/usecase/advisory"
	healthuc "github.com/gramgyan/gramgyan/internal/usecase/health"
	pipelineuc "github.com/gramgyan/gramgyan/internal/usecase/pipeline"
)

// ReportProcessor runs the report pipeline.
type ReportProcessor interface {
	Process(ctx context.Context, rep report.Report) (pipelineuc.Outcome, error)
}

// Transcriber turns an audio URL into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (transcription.Result, error)
}

// Reviewer records validated answers.
type Reviewer interface {
	Validate(ctx context.Context, reportID, answer string) error
}

// Lookup reads back reports and solutions.
type Lookup interface {
	Report(ctx context.Context, id string) (report.Report, error)
	Solution(ctx context.Context, id string) (solution.Solution, error)
}

// Advisor verifies shared knowledge and diagnoses crop photos.
type Advisor interface {
	VerifyKnowledge(ctx context.Context, text string) (advisory.Verdict, error)
	Diagnose(ctx context.Context, in advisoryuc.DiagnoseInput) (advisory.Diagnosis, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
