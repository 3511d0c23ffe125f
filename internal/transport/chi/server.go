package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/logger"
	advisoryuc "github.com/gramgyan/gramgyan/internal/usecase/advisory"
	healthuc "github.com/gramgyan/gramgyan/internal/usecase/health"
)

// Request body limits. A diagnosis body may carry a base64 photo.
const (
	maxBodyBytes         = 1 << 20
	maxDiagnoseBodyBytes = 28 << 20
)

// Server exposes the report pipeline, transcription, review and advisory over HTTP.
type Server struct {
	pipeline      ReportProcessor
	transcriber   Transcriber
	review        Reviewer
	lookup        Lookup
	advisor       Advisor
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline ReportProcessor,
	transcriber Transcriber,
	review Reviewer,
	lookup Lookup,
	advisor Advisor,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:      pipeline,
		transcriber:   transcriber,
		review:        review,
		lookup:        lookup,
		advisor:       advisor,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/process-report", s.ProcessReport)
	r.Post("/transcribe-audio", s.TranscribeAudio)
	r.Get("/reports/{report_id}", s.GetReport)
	r.Post("/reports/{report_id}/validated-answer", s.ValidateAnswer)
	r.Get("/solutions/{solution_id}", s.GetSolution)
	r.Post("/knowledge/verify", s.VerifyKnowledge)
	r.Post("/diagnose", s.Diagnose)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ProcessReport handles POST /process-report.
func (s *Server) ProcessReport(w http.ResponseWriter, r *http.Request) {
	var req processReportRequest
	if !s.decode(w, r, &req) {
		return
	}

	rep, err := reportFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.pipeline.Process(ctx, rep)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	resp := processReportResponse{Success: true, EnglishText: out.EnglishText}
	if out.Solution != nil {
		resp.SolutionID = out.Solution.ID()
	}
	writeJSON(w, http.StatusOK, resp)
}

// TranscribeAudio handles POST /transcribe-audio.
func (s *Server) TranscribeAudio(w http.ResponseWriter, r *http.Request) {
	var req transcribeAudioRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.transcriber.Transcribe(ctx, req.AudioURL)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	writeJSON(w, http.StatusOK, transcribeAudioResponse{
		Transcript:       res.Transcript,
		Language:         res.Language,
		OriginalResponse: res.Raw,
	})
}

// ValidateAnswer handles POST /reports/{report_id}/validated-answer.
func (s *Server) ValidateAnswer(w http.ResponseWriter, r *http.Request) {
	var req validatedAnswerRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "report_id")
	if err := s.review.Validate(r.Context(), id, req.Answer); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validatedAnswerResponse{ReportID: id, Validated: true})
}

// GetReport handles GET /reports/{report_id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.lookup.Report(r.Context(), chi.URLParam(r, "report_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		ReportID:       rep.ID(),
		Type:           string(rep.Type()),
		Status:         string(rep.Status()),
		OriginalText:   rep.OriginalText(),
		TranslatedText: rep.TranslatedText(),
		EnglishText:    rep.EnglishText(),
		AudioURL:       rep.AudioURL(),
	})
}

// GetSolution handles GET /solutions/{solution_id}.
func (s *Server) GetSolution(w http.ResponseWriter, r *http.Request) {
	sol, err := s.lookup.Solution(r.Context(), chi.URLParam(r, "solution_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, solutionResponse{
		SolutionID:   sol.ID(),
		ReportID:     sol.ReportID(),
		SolutionText: sol.Text(),
		AIGenerated:  sol.AIGenerated(),
		Origin:       string(sol.Origin()),
		CreatedAt:    sol.CreatedAt(),
	})
}

// VerifyKnowledge handles POST /knowledge/verify.
func (s *Server) VerifyKnowledge(w http.ResponseWriter, r *http.Request) {
	var req verifyKnowledgeRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	v, err := s.advisor.VerifyKnowledge(ctx, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	writeJSON(w, http.StatusOK, verifyKnowledgeResponse{IsSafe: v.Safe, Reason: v.Reason})
}

// Diagnose handles POST /diagnose.
func (s *Server) Diagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if !s.decodeLimit(w, r, &req, maxDiagnoseBodyBytes) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	d, err := s.advisor.Diagnose(ctx, advisoryuc.DiagnoseInput{
		ImageURL:  req.ImageURL,
		ImageData: req.ImageBase64,
		Query:     req.Query,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	tips := d.PreventionTips
	if tips == nil {
		tips = []string{}
	}
	writeJSON(w, http.StatusOK, diagnoseResponse{
		Crop:             d.Crop,
		Diagnosis:        d.Diagnosis,
		ConfidenceScore:  d.Confidence,
		Solutions:        treatmentDTO{Organic: d.Treatment.Organic, Chemical: d.Treatment.Chemical},
		PreventionTips:   tips,
		RadarSeverity:    string(d.Severity),
		SummaryForFarmer: d.Summary,
		Structured:       d.Structured,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if rep.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(rep.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func reportFromRequest(req processReportRequest) (report.Report, error) {
	typ, err := report.ParseType(req.Type)
	if err != nil {
		return report.Report{}, err
	}
	rep, err := report.New(req.ReportID, req.OriginalText, req.TranslatedText, typ)
	if err != nil {
		return report.Report{}, err
	}
	if req.AudioURL != "" {
		rep = rep.WithAudioURL(req.AudioURL)
	}
	return rep, nil
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	return s.decodeLimit(w, r, v, maxBodyBytes)
}

func (s *Server) decodeLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		msg := "Invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.GenerationTokens))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
