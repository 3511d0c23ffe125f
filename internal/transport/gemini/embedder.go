package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

const opEmbed = "embed"

// semanticSimilarity is the symmetric task type: a report vector is stored and
// later compared against other report vectors, so query and document sides
// must share one embedding space.
const semanticSimilarity = "SEMANTIC_SIMILARITY"

type embedRequest struct {
	Model                string  `json:"model"`
	Content              content `json:"content"`
	TaskType             string  `json:"taskType,omitempty"`
	OutputDimensionality int     `json:"outputDimensionality,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embedder is an embedding provider using embedContent.
type Embedder struct {
	c          *client
	dimensions int
}

// NewEmbedder creates a Gemini embedder.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Embedder{c: c, dimensions: cfg.Dimensions}, nil
}

// Embed implements domain.Embedder. The API does not report token usage for embeddings.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := embedRequest{
		Model:                "models/" + e.c.model,
		Content:              content{Parts: []part{{Text: text}}},
		TaskType:             semanticSimilarity,
		OutputDimensionality: e.dimensions,
	}

	model := e.c.model
	start := time.Now()

	var resp embedResponse
	err := e.c.do(ctx, http.MethodPost, e.c.modelURL("embedContent"), req, &resp)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, providerName, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbed, providerName, model, errorType(err)).Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embedding.Values) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, providerName, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbed, providerName, model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opEmbed, providerName, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opEmbed, providerName, model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: resp.Embedding.Values}, nil
}

// HealthCheck verifies the configured model is reachable.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return e.c.healthCheck(ctx)
}
