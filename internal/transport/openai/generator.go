package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

const opGenerate = "generate"

// Generator is a text generation provider using the OpenAI-compatible chat API.
// Prompts with inline media are rejected: transcription needs the Gemini adapter.
type Generator struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client:   newClient(cfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Generate sends the prompt as a single user message.
func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (domain.GenerationResult, error) {
	if prompt.HasMedia() {
		metrics.ProviderErrorsTotal.WithLabelValues(opGenerate, g.provider, g.model, "unsupported_media").Inc()
		return domain.GenerationResult{}, fmt.Errorf("%s chat completions: %w", g.provider, domain.ErrUnsupportedMedia)
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.Text},
		},
		User: g.user,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		perr := parseAPIError(opGenerate, err)
		metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, g.provider, g.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opGenerate, g.provider, g.model, errorType(perr)).Inc()
		return domain.GenerationResult{}, perr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, g.provider, g.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opGenerate, g.provider, g.model, "empty_response").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opGenerate, g.provider, g.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opGenerate, g.provider, g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opGenerate, g.provider, g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opGenerate, g.provider, g.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	g.logger.Debug("Chat completion finished",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
