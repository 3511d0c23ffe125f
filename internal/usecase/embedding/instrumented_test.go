package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gramgyan/gramgyan/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestInstrumented_Success(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3}, PromptTokens: 4, TotalTokens: 4,
	}}
	emb := NewInstrumentedEmbedder(inner, "gemini", "embedding-001", zap.New(core))

	res, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("expected 3 dims, got %d", len(res.Embedding))
	}
	entries := logs.FilterMessage("Embedding request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(entries))
	}
	if entries[0].ContextMap()["dimensions"] != int64(3) {
		t.Errorf("expected dimensions=3, got %v", entries[0].ContextMap()["dimensions"])
	}
}

func TestInstrumented_Error(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &mockEmbedder{err: domain.ErrRateLimited}
	emb := NewInstrumentedEmbedder(inner, "gemini", "embedding-001", zap.New(core))

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected wrapped ErrRateLimited, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Error("expected failure log")
	}
}

func TestInstrumented_HealthCheck(t *testing.T) {
	emb := NewInstrumentedEmbedder(&mockEmbedder{healthErr: errors.New("down")}, "p", "m", zap.NewNop())
	if err := emb.HealthCheck(context.Background()); err == nil {
		t.Error("expected health error to propagate")
	}

	plain := NewInstrumentedEmbedder(plainEmbedder{}, "p", "m", zap.NewNop())
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should report healthy, got %v", err)
	}
}
