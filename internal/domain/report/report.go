package report

import (
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// MaxTextSize is the maximum accepted size of a submission's text in bytes.
const MaxTextSize = 32768

// Report is a farmer submission (immutable value object).
type Report struct {
	id             string
	originalText   string
	translatedText string
	reportType     Type
	audioURL       string
	englishText    string
	embedding      []float32
	status         Status
}

// New validates and creates a pending Report.
// ID is required, at least one of original/translated text must be non-blank
// and the type must be valid.
func New(id, originalText, translatedText string, reportType Type) (Report, error) {
	if strings.TrimSpace(id) == "" {
		return Report{}, fmt.Errorf("report_id is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(originalText) == "" && strings.TrimSpace(translatedText) == "" {
		return Report{}, fmt.Errorf("original_text or translated_text is required: %w", domain.ErrInvalidInput)
	}
	if len(originalText) > MaxTextSize || len(translatedText) > MaxTextSize {
		return Report{}, fmt.Errorf("report text too large (max %d bytes): %w", MaxTextSize, domain.ErrInvalidInput)
	}
	if !reportType.IsValid() {
		return Report{}, fmt.Errorf("unknown report type %q: %w", reportType, domain.ErrInvalidInput)
	}

	return Report{
		id:             id,
		originalText:   originalText,
		translatedText: translatedText,
		reportType:     reportType,
		status:         Pending,
	}, nil
}

// Reconstruct creates a Report without validation (storage hydration).
func Reconstruct(
	id, originalText, translatedText string, reportType Type, audioURL, englishText string,
	embedding []float32, status Status,
) Report {
	return Report{
		id:             id,
		originalText:   originalText,
		translatedText: translatedText,
		reportType:     reportType,
		audioURL:       audioURL,
		englishText:    englishText,
		embedding:      embedding,
		status:         status,
	}
}

// WithAudioURL returns a copy carrying the source audio location.
func (r Report) WithAudioURL(u string) Report {
	r.audioURL = u
	return r
}

// WithNormalization returns a copy carrying the English text and its embedding, in status Open.
func (r Report) WithNormalization(englishText string, embedding []float32) Report {
	r.englishText = englishText
	r.embedding = append([]float32(nil), embedding...)
	r.status = Open
	return r
}

// ID returns the report identifier.
func (r *Report) ID() string { return r.id }

// OriginalText returns the text as submitted.
func (r *Report) OriginalText() string { return r.originalText }

// TranslatedText returns the client-supplied English translation, if any.
func (r *Report) TranslatedText() string { return r.translatedText }

// Type returns the submission type.
func (r *Report) Type() Type { return r.reportType }

// AudioURL returns the source recording location, if any.
func (r *Report) AudioURL() string { return r.audioURL }

// EnglishText returns the normalized English text.
func (r *Report) EnglishText() string { return r.englishText }

// Embedding returns the vector of the English text.
func (r *Report) Embedding() []float32 { return r.embedding }

// Status returns the lifecycle state.
func (r *Report) Status() Status { return r.status }
