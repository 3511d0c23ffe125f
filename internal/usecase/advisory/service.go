package advisory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
	domadvisory "github.com/gramgyan/gramgyan/internal/domain/advisory"
	"github.com/gramgyan/gramgyan/internal/domain/report"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

// Metric kinds.
const (
	kindVerify   = "verify"
	kindDiagnose = "diagnose"
)

// DefaultMaxImageBytes caps an inline crop photo.
const DefaultMaxImageBytes = 20 << 20

// Service screens shared knowledge and diagnoses crop photos with the generator.
type Service struct {
	gen           Generator
	fetcher       Fetcher
	maxImageBytes int
}

// New creates an advisory service. fetcher serves image URLs.
func New(gen Generator, fetcher Fetcher) *Service {
	return &Service{gen: gen, fetcher: fetcher, maxImageBytes: DefaultMaxImageBytes}
}

// WithMaxImageBytes overrides the inline image limit.
func (s *Service) WithMaxImageBytes(n int) *Service {
	if n > 0 {
		s.maxImageBytes = n
	}
	return s
}

// VerifyKnowledge asks the generator whether text is an accurate, relevant
// farming tip. An unreadable verdict counts as unsafe.
func (s *Service) VerifyKnowledge(ctx context.Context, text string) (domadvisory.Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AdvisoriesTotal.WithLabelValues(kindVerify, "invalid").Inc()
		return domadvisory.Verdict{}, fmt.Errorf("text is required: %w", domain.ErrInvalidInput)
	}
	if len(text) > report.MaxTextSize {
		metrics.AdvisoriesTotal.WithLabelValues(kindVerify, "invalid").Inc()
		return domadvisory.Verdict{}, fmt.Errorf("text too large (max %d bytes): %w", report.MaxTextSize, domain.ErrInvalidInput)
	}

	res, err := s.gen.Generate(ctx, domain.TextPrompt(verifyPrompt(text)))
	if err != nil {
		metrics.AdvisoriesTotal.WithLabelValues(kindVerify, "generation_error").Inc()
		return domadvisory.Verdict{}, fmt.Errorf("verify knowledge: %w: %w", domain.ErrSynthesis, err)
	}
	domain.UsageFromContext(ctx).AddGeneration(res)

	v := domadvisory.ParseVerdict(res.Text)
	outcome := "unsafe"
	if v.Safe {
		outcome = "safe"
	}
	metrics.AdvisoriesTotal.WithLabelValues(kindVerify, outcome).Inc()
	return v, nil
}

// DiagnoseInput is a crop photo, given inline or by URL, and the farmer's description.
type DiagnoseInput struct {
	ImageURL  string
	ImageData []byte
	Query     string
}

// Diagnose identifies the crop and disease in a photo and proposes treatments.
func (s *Service) Diagnose(ctx context.Context, in DiagnoseInput) (domadvisory.Diagnosis, error) {
	image, err := s.image(ctx, in)
	if err != nil {
		return domadvisory.Diagnosis{}, err
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "invalid").Inc()
		return domadvisory.Diagnosis{}, fmt.Errorf("content type %q is not an image: %w", mimeType, domain.ErrInvalidInput)
	}

	res, err := s.gen.Generate(ctx, domain.Prompt{
		Text:  diagnosePrompt(strings.TrimSpace(in.Query)),
		Media: []domain.Media{{MIMEType: mimeType, Data: image}},
	})
	if err != nil {
		metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "generation_error").Inc()
		return domadvisory.Diagnosis{}, fmt.Errorf("diagnose crop: %w: %w", domain.ErrSynthesis, err)
	}
	domain.UsageFromContext(ctx).AddGeneration(res)

	d := domadvisory.ParseDiagnosis(res.Text)
	outcome := "ok"
	if !d.Structured {
		outcome = "unstructured"
	}
	metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, outcome).Inc()
	return d, nil
}

func (s *Service) image(ctx context.Context, in DiagnoseInput) ([]byte, error) {
	hasURL := strings.TrimSpace(in.ImageURL) != ""
	switch {
	case hasURL && len(in.ImageData) > 0:
		metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "invalid").Inc()
		return nil, fmt.Errorf("give either an image URL or image data, not both: %w", domain.ErrInvalidInput)
	case len(in.ImageData) > 0:
		if len(in.ImageData) > s.maxImageBytes {
			metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "invalid").Inc()
			return nil, fmt.Errorf("image too large (max %d bytes): %w", s.maxImageBytes, domain.ErrInvalidInput)
		}
		return in.ImageData, nil
	case hasURL:
		if err := validateURL(in.ImageURL); err != nil {
			metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "invalid").Inc()
			return nil, err
		}
		data, err := s.fetcher.Fetch(ctx, in.ImageURL)
		if err != nil {
			metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "download_error").Inc()
			return nil, fmt.Errorf("fetch image: %w", err)
		}
		return data, nil
	default:
		metrics.AdvisoriesTotal.WithLabelValues(kindDiagnose, "invalid").Inc()
		return nil, fmt.Errorf("an image URL or image data is required: %w", domain.ErrInvalidInput)
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("image URL: %w: %w", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL scheme %q: %w", u.Scheme, domain.ErrInvalidInput)
	}
	if u.Host == "" {
		return fmt.Errorf("image URL has no host: %w", domain.ErrInvalidInput)
	}
	return nil
}
