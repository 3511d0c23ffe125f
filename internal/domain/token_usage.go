package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects provider token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// services write after each provider call; the handler reads it for response headers.
type TokenUsage struct {
	EmbeddingTokens  int
	GenerationTokens int
	Used             bool // true once any provider call was made, even with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddEmbedding records tokens consumed by an embedding call. Nil-safe.
func (u *TokenUsage) AddEmbedding(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Used = true
	}
}

// AddGeneration records tokens consumed by a generation call. Nil-safe.
func (u *TokenUsage) AddGeneration(r GenerationResult) {
	if u != nil {
		u.GenerationTokens += r.PromptTokens + r.CompletionTokens
		u.Used = true
	}
}
