package advisory

import (
	"encoding/json"
	"strings"
)

// Severity is how strongly a diagnosed problem threatens neighbouring farms.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Treatment pairs an organic and a chemical remedy.
type Treatment struct {
	Organic  string `json:"organic"`
	Chemical string `json:"chemical"`
}

// Diagnosis is a crop disease assessment of a photo.
// Structured is false when the model answered in free text, for example to
// ask for a clearer photo; Summary then carries that text.
type Diagnosis struct {
	Crop           string
	Diagnosis      string
	Confidence     float64
	Treatment      Treatment
	PreventionTips []string
	Severity       Severity
	Summary        string
	Structured     bool
	Raw            string
}

type diagnosisJSON struct {
	Crop           string    `json:"crop"`
	Diagnosis      string    `json:"diagnosis"`
	Confidence     float64   `json:"confidence_score"`
	Solutions      Treatment `json:"solutions"`
	PreventionTips []string  `json:"prevention_tips"`
	Severity       string    `json:"radar_severity"`
	Summary        string    `json:"summary_for_farmer"`
}

// ParseDiagnosis reads the agronomist JSON answer, falling back to free text.
func ParseDiagnosis(raw string) Diagnosis {
	body := stripFences(raw)

	var d diagnosisJSON
	if err := json.Unmarshal([]byte(body), &d); err != nil || (d.Diagnosis == "" && d.Summary == "") {
		return Diagnosis{Summary: strings.TrimSpace(raw), Raw: raw}
	}

	return Diagnosis{
		Crop:           d.Crop,
		Diagnosis:      d.Diagnosis,
		Confidence:     min(1, max(0, d.Confidence)),
		Treatment:      d.Solutions,
		PreventionTips: d.PreventionTips,
		Severity:       parseSeverity(d.Severity),
		Summary:        d.Summary,
		Structured:     true,
		Raw:            raw,
	}
}

func parseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
