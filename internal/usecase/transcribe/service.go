package transcribe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/domain/transcription"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

// DefaultMIMEType is the content type declared for downloaded audio.
const DefaultMIMEType = "audio/mp4"

const transcribePrompt = "Transcribe this audio exactly as spoken. Detect the language and return " +
	"the language code/name at the start like [Language: Tamil] then the text."

// Service turns a recorded voice note into text with a detected language.
type Service struct {
	fetcher  Fetcher
	gen      Generator
	mimeType string
}

// New creates a transcription service.
func New(fetcher Fetcher, gen Generator) *Service {
	return &Service{fetcher: fetcher, gen: gen, mimeType: DefaultMIMEType}
}

// WithMIMEType overrides the declared audio content type.
func (s *Service) WithMIMEType(mimeType string) *Service {
	if mimeType != "" {
		s.mimeType = mimeType
	}
	return s
}

// Transcribe downloads the audio at audioURL and asks the generator for a
// verbatim transcript. A failed download never reaches the generator.
func (s *Service) Transcribe(ctx context.Context, audioURL string) (transcription.Result, error) {
	if err := validateURL(audioURL); err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("invalid").Inc()
		return transcription.Result{}, err
	}

	audio, err := s.fetcher.Fetch(ctx, audioURL)
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("download_error").Inc()
		return transcription.Result{}, fmt.Errorf("fetch audio: %w", err)
	}

	res, err := s.gen.Generate(ctx, domain.Prompt{
		Text:  transcribePrompt,
		Media: []domain.Media{{MIMEType: s.mimeType, Data: audio}},
	})
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("generation_error").Inc()
		return transcription.Result{}, fmt.Errorf("transcribe audio: %w: %w", domain.ErrSynthesis, err)
	}

	domain.UsageFromContext(ctx).AddGeneration(res)

	result := transcription.Parse(res.Text)
	outcome := "ok"
	if result.Language == transcription.UnknownLanguage {
		outcome = "untagged"
	}
	metrics.TranscriptionsTotal.WithLabelValues(outcome).Inc()

	return result, nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("audio URL is required: %w", domain.ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("audio URL: %w: %w", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("audio URL scheme %q: %w", u.Scheme, domain.ErrInvalidInput)
	}
	if u.Host == "" {
		return fmt.Errorf("audio URL has no host: %w", domain.ErrInvalidInput)
	}
	return nil
}
