package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/match"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
	"github.com/gramgyan/gramgyan/internal/logger"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

// Outcome is the result of a successful run.
type Outcome struct {
	EnglishText string
	// Stage is the last stage reached: StagePersisted for every successful run.
	Stage Stage
	// Branch is StageResolved or StageGenerated for questions, empty for knowledge.
	Branch   Stage
	Solution *solution.Solution
}

// Service runs a report through normalization, embedding and, for questions,
// answer resolution.
type Service struct {
	normalizer Normalizer
	embedder   Embedder
	resolver   Resolver
	synth      Synthesizer
	reports    ReportWriter
	solutions  SolutionWriter
	events     EventPublisher
	policy     SearchPolicy
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a pipeline service with the abort search policy.
func New(
	normalizer Normalizer, embedder Embedder, resolver Resolver, synth Synthesizer,
	reports ReportWriter, solutions SolutionWriter, logger *zap.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		embedder:   embedder,
		resolver:   resolver,
		synth:      synth,
		reports:    reports,
		solutions:  solutions,
		policy:     SearchAbort,
		logger:     logger,
		now:        time.Now,
	}
}

// WithSearchPolicy sets the behavior on similarity lookup failures.
func (s *Service) WithSearchPolicy(p SearchPolicy) *Service {
	if p.IsValid() {
		s.policy = p
	}
	return s
}

// WithEvents enables report.processed notifications.
func (s *Service) WithEvents(p EventPublisher) *Service {
	s.events = p
	return s
}

// Process runs one report through the pipeline. Any stage failure aborts the
// remaining stages and is returned as a *StageError wrapping the failure kind.
func (s *Service) Process(ctx context.Context, rep report.Report) (Outcome, error) {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("report_id", rep.ID()),
		zap.String("report_type", string(rep.Type())),
	)

	out, err := s.run(ctx, log, rep)
	if err != nil {
		stage := FailedStage(err)
		metrics.PipelineRunsTotal.WithLabelValues(string(rep.Type()), string(stage), "error").Inc()
		log.Warn("Report pipeline failed", zap.String("stage", string(stage)), zap.Error(err))
		return Outcome{Stage: StageFailed}, err
	}

	metrics.PipelineRunsTotal.WithLabelValues(string(rep.Type()), string(out.Branch), "ok").Inc()
	if out.Solution != nil {
		metrics.SolutionsTotal.WithLabelValues(string(out.Solution.Origin())).Inc()
	}
	log.Info("Report processed",
		zap.String("branch", string(out.Branch)),
		zap.Int("english_len", len(out.EnglishText)),
	)

	s.publish(ctx, log, rep, out)
	return out, nil
}

func (s *Service) run(ctx context.Context, log *zap.Logger, rep report.Report) (Outcome, error) {
	needsSolution, err := rep.Type().NeedsSolution()
	if err != nil {
		return Outcome{}, fail(StageReceived, err)
	}

	english, err := s.normalizer.Normalize(ctx, rep.OriginalText(), rep.TranslatedText())
	if err != nil {
		return Outcome{}, fail(StageNormalized, err)
	}
	log.Debug("Report normalized", zap.Bool("pretranslated", english == rep.TranslatedText()))

	vector, err := s.embedder.Embed(ctx, english)
	if err != nil {
		return Outcome{}, fail(StageEmbedded, err)
	}
	log.Debug("Report embedded", zap.Int("dimensions", len(vector)))

	normalized := rep.WithNormalization(english, vector)
	if err := s.reports.UpdateNormalized(ctx, normalized); err != nil {
		return Outcome{}, fail(StageEmbedded, fmt.Errorf("%w: update report: %w", domain.ErrPersistence, err))
	}

	out := Outcome{EnglishText: english, Stage: StagePersisted}

	if !needsSolution {
		return out, nil
	}

	sol, branch, err := s.answer(ctx, log, rep.ID(), english, vector)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.solutions.Insert(ctx, sol); err != nil {
		return Outcome{}, fail(StagePersisted, fmt.Errorf("%w: insert solution: %w", domain.ErrPersistence, err))
	}
	out.Branch = branch
	out.Solution = &sol
	return out, nil
}

// answer produces exactly one solution for a question: reused when a validated
// match is accepted, generated otherwise.
func (s *Service) answer(
	ctx context.Context, log *zap.Logger, reportID, question string, vector []float32,
) (solution.Solution, Stage, error) {
	m, err := s.resolver.Resolve(ctx, vector)
	if err != nil {
		if s.policy != SearchGenerate {
			return solution.Solution{}, "", fail(StageResolved, err)
		}
		log.Warn("Similarity search failed, generating a fresh answer", zap.Error(err))
		m = nil
	}

	if m != nil {
		sol, err := s.reuse(reportID, *m)
		if err != nil {
			return solution.Solution{}, "", fail(StageResolved, err)
		}
		log.Debug("Reusing validated answer",
			zap.String("matched_report_id", m.ReportID()),
			zap.Float64("score", m.Score()),
		)
		return sol, StageResolved, nil
	}

	sol, err := s.synth.FromScratch(ctx, reportID, question)
	if err != nil {
		return solution.Solution{}, "", fail(StageGenerated, err)
	}
	log.Debug("Generated fresh answer", zap.Int("solution_len", len(sol.Text())))
	return sol, StageGenerated, nil
}

func (s *Service) reuse(reportID string, m match.Match) (solution.Solution, error) {
	sol, err := s.synth.FromMatch(reportID, m)
	if err != nil {
		return solution.Solution{}, fmt.Errorf("reuse answer of %s: %w", m.ReportID(), err)
	}
	return sol, nil
}

// publish never fails the run: its state is already committed.
func (s *Service) publish(ctx context.Context, log *zap.Logger, rep report.Report, out Outcome) {
	if s.events == nil {
		return
	}

	e := report.ProcessedEvent{
		ReportID:    rep.ID(),
		Type:        rep.Type(),
		EnglishText: out.EnglishText,
		ProcessedAt: s.now().UTC(),
	}
	if out.Solution != nil {
		e.SolutionID = out.Solution.ID()
		e.SolutionOrigin = string(out.Solution.Origin())
	}

	if err := s.events.PublishProcessed(ctx, e); err != nil {
		log.Warn("Failed to publish report.processed event", zap.Error(err))
	}
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
