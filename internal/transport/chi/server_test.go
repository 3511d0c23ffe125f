package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/advisory"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/domain/solution"
	"github.com/gramgyan/gramgyan/internal/domain/transcription"
	advisoryuc "github.com/gramgyan/gramgyan/internal/usecase/advisory"
	healthuc "github.com/gramgyan/gramgyan/internal/usecase/health"
	pipelineuc "github.com/gramgyan/gramgyan/internal/usecase/pipeline"
)

// --- Mocks ---

type mockProcessor struct {
	processFn func(ctx context.Context, rep report.Report) (pipelineuc.Outcome, error)
	last      report.Report
	calls     int
}

func (m *mockProcessor) Process(ctx context.Context, rep report.Report) (pipelineuc.Outcome, error) {
	m.calls++
	m.last = rep
	if m.processFn != nil {
		return m.processFn(ctx, rep)
	}
	return pipelineuc.Outcome{EnglishText: "english", Stage: pipelineuc.StagePersisted}, nil
}

type mockTranscriber struct {
	transcribeFn func(ctx context.Context, audioURL string) (transcription.Result, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioURL string) (transcription.Result, error) {
	if m.transcribeFn != nil {
		return m.transcribeFn(ctx, audioURL)
	}
	return transcription.Parse("[Language: Tamil] வணக்கம்"), nil
}

type mockReviewer struct {
	validateFn func(ctx context.Context, reportID, answer string) error
	lastID     string
}

func (m *mockReviewer) Validate(ctx context.Context, reportID, answer string) error {
	m.lastID = reportID
	if m.validateFn != nil {
		return m.validateFn(ctx, reportID, answer)
	}
	return nil
}

type mockLookup struct {
	reportFn   func(ctx context.Context, id string) (report.Report, error)
	solutionFn func(ctx context.Context, id string) (solution.Solution, error)
}

func (m *mockLookup) Report(ctx context.Context, id string) (report.Report, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx, id)
	}
	return report.Reconstruct(id, "இலை", "", report.Question, "", "leaf", nil, report.Pending), nil
}

func (m *mockLookup) Solution(ctx context.Context, id string) (solution.Solution, error) {
	if m.solutionFn != nil {
		return m.solutionFn(ctx, id)
	}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return solution.Reconstruct(id, "r-1", "Spray neem oil.", true, solution.Generated, at), nil
}

type mockAdvisor struct {
	verifyFn   func(ctx context.Context, text string) (advisory.Verdict, error)
	diagnoseFn func(ctx context.Context, in advisoryuc.DiagnoseInput) (advisory.Diagnosis, error)
	lastInput  advisoryuc.DiagnoseInput
	calls      int
}

func (m *mockAdvisor) VerifyKnowledge(ctx context.Context, text string) (advisory.Verdict, error) {
	m.calls++
	if m.verifyFn != nil {
		return m.verifyFn(ctx, text)
	}
	return advisory.Verdict{Safe: true, Reason: advisory.ReasonVerified}, nil
}

func (m *mockAdvisor) Diagnose(ctx context.Context, in advisoryuc.DiagnoseInput) (advisory.Diagnosis, error) {
	m.calls++
	m.lastInput = in
	if m.diagnoseFn != nil {
		return m.diagnoseFn(ctx, in)
	}
	return advisory.Diagnosis{Summary: "Please send a clearer photo."}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type fixture struct {
	processor   *mockProcessor
	transcriber *mockTranscriber
	reviewer    *mockReviewer
	lookup      *mockLookup
	advisor     *mockAdvisor
	health      *mockHealth
	router      http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		processor:   &mockProcessor{},
		transcriber: &mockTranscriber{},
		reviewer:    &mockReviewer{},
		lookup:      &mockLookup{},
		advisor:     &mockAdvisor{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	srv := NewServer(f.processor, f.transcriber, f.reviewer, f.lookup, f.advisor, f.health, zap.NewNop())
	r := chi.NewRouter()
	r.Use(CORSMiddleware([]string{"*"}, []string{"authorization", "x-client-info", "apikey", "content-type"}))
	srv.Routes(r)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestProcessReport_OK(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/process-report",
		`{"report_id":"r-1","original_text":"இலை","type":"question","translated_text":""}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[map[string]any](t, rr)
	want := map[string]any{"success": true, "englishText": "english"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if f.processor.last.ID() != "r-1" || f.processor.last.Type() != report.Question {
		t.Errorf("unexpected report passed to pipeline: %s %s", f.processor.last.ID(), f.processor.last.Type())
	}
}

func TestProcessReport_InvalidInput(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"malformed json", `{"report_id":`},
		{"empty body", ``},
		{"missing id", `{"original_text":"x","type":"question"}`},
		{"missing texts", `{"report_id":"r-1","type":"question"}`},
		{"unknown type", `{"report_id":"r-1","original_text":"x","type":"poll"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do(http.MethodPost, "/process-report", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			if decodeBody[errorResponse](t, rr).Error == "" {
				t.Error("expected error message")
			}
			if f.processor.calls != 0 {
				t.Error("pipeline must not run for invalid input")
			}
		})
	}
}

func TestProcessReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"translation", &pipelineuc.StageError{Stage: pipelineuc.StageNormalized, Err: domain.ErrTranslation}, 502},
		{"embedding", domain.ErrEmbedding, http.StatusBadGateway},
		{"search", domain.ErrSearch, http.StatusBadGateway},
		{"synthesis", domain.ErrSynthesis, http.StatusBadGateway},
		{"persistence", domain.ErrPersistence, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.processor.processFn = func(_ context.Context, _ report.Report) (pipelineuc.Outcome, error) {
				return pipelineuc.Outcome{Stage: pipelineuc.StageFailed}, tt.err
			}

			rr := f.do(http.MethodPost, "/process-report",
				`{"report_id":"r-1","original_text":"x","type":"knowledge"}`)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			msg := decodeBody[errorResponse](t, rr).Error
			if msg == "" {
				t.Error("expected error message")
			}
			if tt.name == "unknown" && msg != "internal error" {
				t.Errorf("unknown errors must not leak details, got %q", msg)
			}
		})
	}
}

func TestTranscribeAudio_OK(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/transcribe-audio", `{"audioUrl":"https://x.example.com/a.m4a"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	want := transcribeAudioResponse{
		Transcript:       "வணக்கம்",
		Language:         "Tamil",
		OriginalResponse: "[Language: Tamil] வணக்கம்",
	}
	if diff := cmp.Diff(want, decodeBody[transcribeAudioResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestTranscribeAudio_DownloadError(t *testing.T) {
	f := newFixture()
	f.transcriber.transcribeFn = func(_ context.Context, _ string) (transcription.Result, error) {
		return transcription.Result{}, domain.NewDownloadError(http.StatusForbidden, "Forbidden")
	}

	rr := f.do(http.MethodPost, "/transcribe-audio", `{"audioUrl":"https://x.example.com/a.m4a"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if msg := decodeBody[errorResponse](t, rr).Error; !strings.Contains(msg, "Forbidden") {
		t.Errorf("expected status text in message, got %q", msg)
	}
}

func TestTranscribeAudio_InvalidInput(t *testing.T) {
	f := newFixture()
	f.transcriber.transcribeFn = func(_ context.Context, _ string) (transcription.Result, error) {
		return transcription.Result{}, domain.ErrInvalidInput
	}

	rr := f.do(http.MethodPost, "/transcribe-audio", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestValidateAnswer(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/reports/r-9/validated-answer", `{"answer":"Use neem oil."}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if f.reviewer.lastID != "r-9" {
		t.Errorf("expected report id from path, got %q", f.reviewer.lastID)
	}
	got := decodeBody[validatedAnswerResponse](t, rr)
	if got.ReportID != "r-9" || !got.Validated {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestValidateAnswer_NotFound(t *testing.T) {
	f := newFixture()
	f.reviewer.validateFn = func(_ context.Context, _, _ string) error { return domain.ErrNotFound }

	rr := f.do(http.MethodPost, "/reports/nope/validated-answer", `{"answer":"x"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	want := healthResponse{Status: "ok", Checks: map[string]string{"database": "ok"}}
	if diff := cmp.Diff(want, decodeBody[healthResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	f.health.report = healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
		"database": healthuc.CheckOK, "embedding": healthuc.CheckError,
	}}
	if rr := f.do(http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodOptions, "/process-report", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if f.processor.calls != 0 {
		t.Error("preflight must not reach the handler")
	}
}

func TestCORSActualRequest(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/process-report",
		strings.NewReader(`{"report_id":"r-1","translated_text":"x","type":"knowledge"}`))
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header on actual request")
	}
}

func TestProcessReport_UsageHeaders(t *testing.T) {
	f := newFixture()
	f.processor.processFn = func(ctx context.Context, _ report.Report) (pipelineuc.Outcome, error) {
		domain.UsageFromContext(ctx).AddEmbedding(12)
		domain.UsageFromContext(ctx).AddGeneration(domain.GenerationResult{PromptTokens: 30, CompletionTokens: 8})
		return pipelineuc.Outcome{EnglishText: "english", Stage: pipelineuc.StagePersisted}, nil
	}

	rr := f.do(http.MethodPost, "/process-report",
		`{"report_id":"r-1","original_text":"x","type":"Question","translated_text":""}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "12" {
		t.Errorf("X-Embedding-Tokens = %q, want 12", got)
	}
	if got := rr.Header().Get("X-Generation-Tokens"); got != "38" {
		t.Errorf("X-Generation-Tokens = %q, want 38", got)
	}
}

func TestProcessReport_NoUsageHeadersWithoutProviderCalls(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/process-report",
		`{"report_id":"r-1","original_text":"","type":"Knowledge","translated_text":"already english"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "" {
		t.Errorf("X-Embedding-Tokens = %q, want unset", got)
	}
}

func TestProcessReport_SolutionID(t *testing.T) {
	f := newFixture()
	f.processor.processFn = func(_ context.Context, rep report.Report) (pipelineuc.Outcome, error) {
		sol, _ := solution.NewGenerated(rep.ID(), "Water at dawn.")
		return pipelineuc.Outcome{EnglishText: "english", Solution: &sol, Stage: pipelineuc.StagePersisted}, nil
	}

	rr := f.do(http.MethodPost, "/process-report", `{"report_id":"r-1","original_text":"x","type":"question"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := decodeBody[processReportResponse](t, rr); got.SolutionID == "" {
		t.Error("expected solutionId for an answered question")
	}
}

func TestGetReport(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodGet, "/reports/r-7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	want := reportResponse{
		ReportID: "r-7", Type: "question", Status: string(report.Pending),
		OriginalText: "இலை", EnglishText: "leaf",
	}
	if diff := cmp.Diff(want, decodeBody[reportResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	f := newFixture()
	f.lookup.reportFn = func(_ context.Context, id string) (report.Report, error) {
		return report.Report{}, fmt.Errorf("get report: report %s: %w", id, domain.ErrNotFound)
	}

	rr := f.do(http.MethodGet, "/reports/r-404", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestGetSolution(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodGet, "/solutions/s-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	want := solutionResponse{
		SolutionID: "s-1", ReportID: "r-1", SolutionText: "Spray neem oil.", AIGenerated: true,
		Origin: string(solution.Generated), CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, decodeBody[solutionResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSolution_PersistenceError(t *testing.T) {
	f := newFixture()
	f.lookup.solutionFn = func(context.Context, string) (solution.Solution, error) {
		return solution.Solution{}, domain.ErrPersistence
	}

	rr := f.do(http.MethodGet, "/solutions/s-1", "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestVerifyKnowledge(t *testing.T) {
	f := newFixture()
	f.advisor.verifyFn = func(ctx context.Context, text string) (advisory.Verdict, error) {
		domain.UsageFromContext(ctx).AddGeneration(domain.GenerationResult{PromptTokens: 5, CompletionTokens: 2})
		if text != "Pour battery acid on crops" {
			t.Errorf("text = %q", text)
		}
		return advisory.Verdict{Safe: false, Reason: "Scientifically incorrect"}, nil
	}

	rr := f.do(http.MethodPost, "/knowledge/verify", `{"text":"Pour battery acid on crops"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	want := verifyKnowledgeResponse{IsSafe: false, Reason: "Scientifically incorrect"}
	if diff := cmp.Diff(want, decodeBody[verifyKnowledgeResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if rr.Header().Get("X-Generation-Tokens") != "7" {
		t.Errorf("X-Generation-Tokens = %q", rr.Header().Get("X-Generation-Tokens"))
	}
}

func TestVerifyKnowledge_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", domain.ErrInvalidInput, http.StatusBadRequest},
		{"generation", domain.ErrSynthesis, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.advisor.verifyFn = func(context.Context, string) (advisory.Verdict, error) {
				return advisory.Verdict{}, tt.err
			}
			rr := f.do(http.MethodPost, "/knowledge/verify", `{"text":""}`)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestDiagnose_Base64Image(t *testing.T) {
	f := newFixture()
	f.advisor.diagnoseFn = func(context.Context, advisoryuc.DiagnoseInput) (advisory.Diagnosis, error) {
		return advisory.Diagnosis{
			Crop: "Rice", Diagnosis: "Blast", Confidence: 0.8,
			Treatment:      advisory.Treatment{Organic: "Pseudomonas", Chemical: "Tricyclazole"},
			PreventionTips: []string{"Avoid excess nitrogen"},
			Severity:       advisory.SeverityHigh, Summary: "நெல் குலை நோய்", Structured: true,
		}, nil
	}

	// "iVBORw0KGgo=" is the PNG signature.
	rr := f.do(http.MethodPost, "/diagnose", `{"imageBase64":"iVBORw0KGgo=","query":"spots"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if string(f.advisor.lastInput.ImageData) != "\x89PNG\r\n\x1a\n" || f.advisor.lastInput.Query != "spots" {
		t.Errorf("input = %+v", f.advisor.lastInput)
	}
	want := diagnoseResponse{
		Crop: "Rice", Diagnosis: "Blast", ConfidenceScore: 0.8,
		Solutions:      treatmentDTO{Organic: "Pseudomonas", Chemical: "Tricyclazole"},
		PreventionTips: []string{"Avoid excess nitrogen"},
		RadarSeverity:  "HIGH", SummaryForFarmer: "நெல் குலை நோய்", Structured: true,
	}
	if diff := cmp.Diff(want, decodeBody[diagnoseResponse](t, rr)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnose_FreeTextAnswer(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/diagnose", `{"imageUrl":"https://cdn.example.com/leaf.jpg","query":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[map[string]any](t, rr)
	if got["structured"] != false || got["summary_for_farmer"] != "Please send a clearer photo." {
		t.Errorf("response = %v", got)
	}
	if tips, ok := got["prevention_tips"].([]any); !ok || len(tips) != 0 {
		t.Errorf("prevention_tips = %v, want empty list", got["prevention_tips"])
	}
	if f.advisor.lastInput.ImageURL != "https://cdn.example.com/leaf.jpg" {
		t.Errorf("image url = %q", f.advisor.lastInput.ImageURL)
	}
}

func TestDiagnose_BadBase64(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/diagnose", `{"imageBase64":"not base64!!"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if f.advisor.calls != 0 {
		t.Error("advisor must not be called for a malformed body")
	}
}

func TestDiagnose_DownloadError(t *testing.T) {
	f := newFixture()
	f.advisor.diagnoseFn = func(context.Context, advisoryuc.DiagnoseInput) (advisory.Diagnosis, error) {
		return advisory.Diagnosis{}, fmt.Errorf("fetch image: %w", domain.NewDownloadError(404, "Not Found"))
	}

	rr := f.do(http.MethodPost, "/diagnose", `{"imageUrl":"https://cdn.example.com/gone.jpg"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}
