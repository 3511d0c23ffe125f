package gramgyan

import "time"

// Report types accepted by ProcessReport.
const (
	TypeQuestion  = "Question"
	TypeKnowledge = "Knowledge"
)

// Report is a farmer submission. At least one of OriginalText and
// TranslatedText must be set.
type Report struct {
	ID             string `json:"report_id"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Type           string `json:"type"`
	AudioURL       string `json:"audio_url,omitempty"`
}

// ProcessResult is the outcome of a successful pipeline run.
type ProcessResult struct {
	Success     bool   `json:"success"`
	EnglishText string `json:"englishText"`
	SolutionID  string `json:"solutionId,omitempty"` // set for answered questions
}

// StoredReport is a report as kept by the server after processing.
type StoredReport struct {
	ID             string `json:"report_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	EnglishText    string `json:"english_text,omitempty"`
	AudioURL       string `json:"audio_url,omitempty"`
}

// Solution is an answer attached to a question report.
type Solution struct {
	ID          string    `json:"solution_id"`
	ReportID    string    `json:"report_id"`
	Text        string    `json:"solution_text"`
	AIGenerated bool      `json:"ai_generated"`
	Origin      string    `json:"origin"` // "reused" or "generated"
	CreatedAt   time.Time `json:"created_at"`
}

// Verdict is the outcome of a knowledge safety check.
type Verdict struct {
	IsSafe bool   `json:"is_safe"`
	Reason string `json:"reason"`
}

// Transcript is a transcribed audio recording.
type Transcript struct {
	Transcript       string `json:"transcript"`
	Language         string `json:"language"`
	OriginalResponse string `json:"originalResponse"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

type transcribeRequest struct {
	AudioURL string `json:"audioUrl"`
}

type verifyRequest struct {
	Text string `json:"text"`
}

type validatedAnswerRequest struct {
	Answer string `json:"answer"`
}

type errorBody struct {
	Error string `json:"error"`
}
