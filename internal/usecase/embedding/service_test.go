package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/gramgyan/gramgyan/internal/domain"
)

func TestEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}}}
	svc := New(inner)

	vec, err := svc.Embed(context.Background(), "Leaves are yellow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector %v", vec)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
}

func TestEmbed_EmptyText(t *testing.T) {
	inner := &mockEmbedder{}
	svc := New(inner)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Embed(context.Background(), text)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Embed(%q): expected ErrInvalidInput, got %v", text, err)
		}
	}
	if inner.calls != 0 {
		t.Errorf("expected no provider calls, got %d", inner.calls)
	}
}

func TestEmbed_ProviderError(t *testing.T) {
	svc := New(&mockEmbedder{err: domain.ErrProviderError})

	_, err := svc.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
	if !errors.Is(err, domain.ErrProviderError) {
		t.Errorf("expected cause preserved, got %v", err)
	}
}

func TestEmbed_EmptyVector(t *testing.T) {
	svc := New(&mockEmbedder{result: domain.EmbeddingResult{}})

	_, err := svc.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestEmbed_RecordsTokenUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 9}}
	svc := New(inner)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Embed(ctx, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.EmbeddingTokens != 9 {
		t.Errorf("EmbeddingTokens = %d, want 9", usage.EmbeddingTokens)
	}
}
