package domain

import "context"

// Generator is the text generation contract shared by normalization,
// answer synthesis and transcription.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (GenerationResult, error)
}

// Media is an inline binary attachment sent alongside a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

// Prompt is a single-turn instruction with optional inline media.
type Prompt struct {
	Text  string
	Media []Media
}

// TextPrompt builds a prompt without attachments.
func TextPrompt(text string) Prompt {
	return Prompt{Text: text}
}

// HasMedia reports whether the prompt carries attachments.
func (p Prompt) HasMedia() bool { return len(p.Media) > 0 }

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
