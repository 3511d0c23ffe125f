package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

const opGenerate = "generate"

type inlineData struct {
	MIMEType string `json:"mime_type"`
	// Data is base64-encoded by encoding/json.
	Data []byte `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Generator is a multimodal text generation provider (generateContent).
type Generator struct {
	c *client
}

// NewGenerator creates a Gemini generator.
func NewGenerator(cfg *Config) (*Generator, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Generator{c: c}, nil
}

// Generate sends the prompt text followed by its inline media as one user turn.
func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (domain.GenerationResult, error) {
	parts := make([]part, 0, 1+len(prompt.Media))
	parts = append(parts, part{Text: prompt.Text})
	for _, m := range prompt.Media {
		parts = append(parts, part{InlineData: &inlineData{MIMEType: m.MIMEType, Data: m.Data}})
	}
	req := generateRequest{Contents: []content{{Role: "user", Parts: parts}}}

	model := g.c.model
	start := time.Now()

	var resp generateResponse
	err := g.c.do(ctx, http.MethodPost, g.c.modelURL("generateContent"), req, &resp)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, providerName, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opGenerate, providerName, model, errorType(err)).Inc()
		return domain.GenerationResult{}, fmt.Errorf("generate content: %w", err)
	}

	text := candidateText(&resp)
	if text == "" {
		metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, providerName, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opGenerate, providerName, model, "empty_response").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty generate content response: %w", domain.ErrProviderError)
	}

	usage := resp.UsageMetadata
	metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, providerName, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opGenerate, providerName, model).Observe(duration.Seconds())
	if usage.TotalTokenCount > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opGenerate, providerName, model, "prompt").
			Add(float64(usage.PromptTokenCount))
		metrics.ProviderTokensTotal.WithLabelValues(opGenerate, providerName, model, "completion").
			Add(float64(usage.CandidatesTokenCount))
	}

	g.c.logger.Debug("Gemini generation finished",
		zap.String("model", model),
		zap.Duration("duration", duration),
		zap.Int("media_parts", len(prompt.Media)),
		zap.String("finish_reason", resp.Candidates[0].FinishReason),
	)

	return domain.GenerationResult{
		Text:             text,
		PromptTokens:     usage.PromptTokenCount,
		CompletionTokens: usage.CandidatesTokenCount,
	}, nil
}

// HealthCheck verifies the configured model is reachable.
func (g *Generator) HealthCheck(ctx context.Context) error {
	return g.c.healthCheck(ctx)
}

func candidateText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
