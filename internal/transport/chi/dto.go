package chi

import "time"

// processReportRequest is the body of POST /process-report.
type processReportRequest struct {
	ReportID       string `json:"report_id"`
	OriginalText   string `json:"original_text"`
	Type           string `json:"type"`
	TranslatedText string `json:"translated_text"`
	AudioURL       string `json:"audio_url,omitempty"`
}

type processReportResponse struct {
	Success     bool   `json:"success"`
	EnglishText string `json:"englishText"`
	SolutionID  string `json:"solutionId,omitempty"`
}

// transcribeAudioRequest is the body of POST /transcribe-audio.
type transcribeAudioRequest struct {
	AudioURL string `json:"audioUrl"`
}

type transcribeAudioResponse struct {
	Transcript       string `json:"transcript"`
	Language         string `json:"language"`
	OriginalResponse string `json:"originalResponse"`
}

// validatedAnswerRequest is the body of POST /reports/{report_id}/validated-answer.
type validatedAnswerRequest struct {
	Answer string `json:"answer"`
}

type validatedAnswerResponse struct {
	ReportID  string `json:"report_id"`
	Validated bool   `json:"validated"`
}

type reportResponse struct {
	ReportID       string `json:"report_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	EnglishText    string `json:"english_text,omitempty"`
	AudioURL       string `json:"audio_url,omitempty"`
}

type solutionResponse struct {
	SolutionID   string    `json:"solution_id"`
	ReportID     string    `json:"report_id"`
	SolutionText string    `json:"solution_text"`
	AIGenerated  bool      `json:"ai_generated"`
	Origin       string    `json:"origin"`
	CreatedAt    time.Time `json:"created_at"`
}

// verifyKnowledgeRequest is the body of POST /knowledge/verify.
type verifyKnowledgeRequest struct {
	Text string `json:"text"`
}

type verifyKnowledgeResponse struct {
	IsSafe bool   `json:"is_safe"`
	Reason string `json:"reason"`
}

// diagnoseRequest is the body of POST /diagnose. ImageBase64 is standard base64.
type diagnoseRequest struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 []byte `json:"imageBase64,omitempty"`
	Query       string `json:"query"`
}

type treatmentDTO struct {
	Organic  string `json:"organic"`
	Chemical string `json:"chemical"`
}

type diagnoseResponse struct {
	Crop             string       `json:"crop,omitempty"`
	Diagnosis        string       `json:"diagnosis,omitempty"`
	ConfidenceScore  float64      `json:"confidence_score"`
	Solutions        treatmentDTO `json:"solutions"`
	PreventionTips   []string     `json:"prevention_tips"`
	RadarSeverity    string       `json:"radar_severity,omitempty"`
	SummaryForFarmer string       `json:"summary_for_farmer"`
	Structured       bool         `json:"structured"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error string `json:"error"`
}
