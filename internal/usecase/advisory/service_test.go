package advisory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gramgyan/gramgyan/internal/domain"
	domadvisory "github.com/gramgyan/gramgyan/internal/domain/advisory"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockGenerator struct {
	generateFn func(ctx context.Context, p domain.Prompt) (domain.GenerationResult, error)
	lastPrompt domain.Prompt
	calls      int
}

func (m *mockGenerator) Generate(ctx context.Context, p domain.Prompt) (domain.GenerationResult, error) {
	m.calls++
	m.lastPrompt = p
	if m.generateFn != nil {
		return m.generateFn(ctx, p)
	}
	return domain.GenerationResult{Text: `{"safe": true}`}, nil
}

type mockFetcher struct {
	fetchFn func(ctx context.Context, rawURL string) ([]byte, error)
	lastURL string
	calls   int
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	m.calls++
	m.lastURL = rawURL
	if m.fetchFn != nil {
		return m.fetchFn(ctx, rawURL)
	}
	return pngHeader, nil
}

func reply(text string) func(context.Context, domain.Prompt) (domain.GenerationResult, error) {
	return func(context.Context, domain.Prompt) (domain.GenerationResult, error) {
		return domain.GenerationResult{Text: text, PromptTokens: 40, CompletionTokens: 8}, nil
	}
}

func TestVerifyKnowledge_Safe(t *testing.T) {
	gen := &mockGenerator{generateFn: reply("```json\n{\"safe\": true, \"reason\": \"\"}\n```")}
	ctx, usage := domain.NewContextWithUsage(context.Background())

	v, err := New(gen, &mockFetcher{}).VerifyKnowledge(ctx, "  Mulch keeps soil moist in summer. ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Safe || v.Reason != domadvisory.ReasonVerified {
		t.Errorf("verdict = %+v", v)
	}
	if !strings.Contains(gen.lastPrompt.Text, `Text to Verify: "Mulch keeps soil moist in summer."`) {
		t.Errorf("prompt should carry the trimmed tip, got %q", gen.lastPrompt.Text)
	}
	if len(gen.lastPrompt.Media) != 0 {
		t.Error("verification is text only")
	}
	if usage.GenerationTokens != 48 {
		t.Errorf("generation tokens = %d, want 48", usage.GenerationTokens)
	}
}

func TestVerifyKnowledge_Unsafe(t *testing.T) {
	gen := &mockGenerator{generateFn: reply(`{"safe": false, "reason": "Scientifically incorrect"}`)}

	v, err := New(gen, &mockFetcher{}).VerifyKnowledge(context.Background(), "Pour battery acid on crops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Safe || v.Reason != "Scientifically incorrect" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestVerifyKnowledge_InvalidInput(t *testing.T) {
	for name, text := range map[string]string{
		"blank":     "   ",
		"too large": strings.Repeat("a", 32769),
	} {
		t.Run(name, func(t *testing.T) {
			gen := &mockGenerator{}
			_, err := New(gen, &mockFetcher{}).VerifyKnowledge(context.Background(), text)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if gen.calls != 0 {
				t.Error("generator must not be called")
			}
		})
	}
}

func TestVerifyKnowledge_GeneratorError(t *testing.T) {
	gen := &mockGenerator{generateFn: func(context.Context, domain.Prompt) (domain.GenerationResult, error) {
		return domain.GenerationResult{}, domain.ErrRateLimited
	}}

	_, err := New(gen, &mockFetcher{}).VerifyKnowledge(context.Background(), "Sow after the first rain.")
	if !errors.Is(err, domain.ErrSynthesis) || !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrSynthesis wrapping ErrRateLimited, got %v", err)
	}
}

func TestDiagnose_InlineImage(t *testing.T) {
	gen := &mockGenerator{generateFn: reply(`{"crop":"Rice","diagnosis":"Blast","confidence_score":0.8,` +
		`"solutions":{"organic":"Pseudomonas spray","chemical":"Tricyclazole"},"radar_severity":"MEDIUM",` +
		`"summary_for_farmer":"நெல் குலை நோய்"}`)}
	fetcher := &mockFetcher{}

	d, err := New(gen, fetcher).Diagnose(context.Background(), DiagnoseInput{
		ImageData: pngHeader,
		Query:     "brown spots on leaves",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Structured || d.Crop != "Rice" || d.Severity != domadvisory.SeverityMedium {
		t.Errorf("diagnosis = %+v", d)
	}
	if fetcher.calls != 0 {
		t.Error("inline image must not be fetched")
	}
	if len(gen.lastPrompt.Media) != 1 || gen.lastPrompt.Media[0].MIMEType != "image/png" {
		t.Fatalf("media = %+v", gen.lastPrompt.Media)
	}
	if !strings.Contains(gen.lastPrompt.Text, `description: "brown spots on leaves"`) {
		t.Errorf("prompt should quote the description, got %q", gen.lastPrompt.Text)
	}
}

func TestDiagnose_ImageURL(t *testing.T) {
	gen := &mockGenerator{generateFn: reply("Please send a clearer photo.")}
	fetcher := &mockFetcher{fetchFn: func(context.Context, string) ([]byte, error) {
		return []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), nil
	}}

	d, err := New(gen, fetcher).Diagnose(context.Background(), DiagnoseInput{ImageURL: "https://cdn.example.com/leaf.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.lastURL != "https://cdn.example.com/leaf.jpg" {
		t.Errorf("fetched %q", fetcher.lastURL)
	}
	if gen.lastPrompt.Media[0].MIMEType != "image/jpeg" {
		t.Errorf("mime = %q", gen.lastPrompt.Media[0].MIMEType)
	}
	if d.Structured || d.Summary != "Please send a clearer photo." {
		t.Errorf("diagnosis = %+v", d)
	}
}

func TestDiagnose_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   DiagnoseInput
	}{
		{"no image", DiagnoseInput{Query: "what is this"}},
		{"both sources", DiagnoseInput{ImageURL: "https://x.example/a.png", ImageData: pngHeader}},
		{"bad scheme", DiagnoseInput{ImageURL: "file:///etc/passwd"}},
		{"no host", DiagnoseInput{ImageURL: "https:///a.png"}},
		{"not an image", DiagnoseInput{ImageData: []byte("hello, just text")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockGenerator{}
			fetcher := &mockFetcher{}
			_, err := New(gen, fetcher).Diagnose(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if gen.calls != 0 || fetcher.calls != 0 {
				t.Errorf("collaborators called: gen=%d fetch=%d", gen.calls, fetcher.calls)
			}
		})
	}
}

func TestDiagnose_ImageTooLarge(t *testing.T) {
	gen := &mockGenerator{}
	svc := New(gen, &mockFetcher{}).WithMaxImageBytes(8)

	_, err := svc.Diagnose(context.Background(), DiagnoseInput{ImageData: pngHeader})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDiagnose_DownloadError(t *testing.T) {
	gen := &mockGenerator{}
	fetcher := &mockFetcher{fetchFn: func(context.Context, string) ([]byte, error) {
		return nil, domain.NewDownloadError(404, "Not Found")
	}}

	_, err := New(gen, fetcher).Diagnose(context.Background(), DiagnoseInput{ImageURL: "https://cdn.example.com/gone.jpg"})
	var dlErr *domain.DownloadError
	if !errors.As(err, &dlErr) || dlErr.Status != 404 {
		t.Errorf("expected DownloadError 404, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not be called after a failed download")
	}
}
