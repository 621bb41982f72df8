// Package anyllm provides a coach backed by github.com/mozilla-ai/any-llm-go,
// a unified multi-provider LLM interface that supports OpenAI, Anthropic,
// Gemini, Ollama, DeepSeek, Mistral, Groq, and more. A local Ollama model is
// the usual choice so coaching works fully offline.
//
// Usage:
//
//	p, err := anyllm.NewOllama("mistral:7b")
//	p, err := anyllm.New("anthropic", "claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-..."))
package anyllm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/cadenza/pkg/provider/coach"
)

// systemPrompt frames the model as a speaking coach grounded in the metrics
// it is given, so feedback cites numbers instead of generic advice.
const systemPrompt = "You are a concise speaking coach. Use the provided metrics and transcript " +
	"to give actionable feedback. Focus on clarity, confidence, tone, pacing, " +
	"engagement, cadence, and flow. Provide 3-5 concrete tips."

// transcriptExcerptLen caps how much transcript is inlined into the prompt.
// The metrics already summarise the whole delivery; the excerpt only gives
// the model concrete phrasing to quote back.
const transcriptExcerptLen = 1200

// Ensure Provider implements the coach.Provider interface at compile time.
var _ coach.Provider = (*Provider)(nil)

// Provider implements coach.Provider by wrapping github.com/mozilla-ai/any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a new Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile".
//
// model is the specific model to use (e.g., "mistral:7b", "gpt-4o-mini").
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). If no API key option is provided, the provider
// falls back to the relevant environment variable (OPENAI_API_KEY,
// ANTHROPIC_API_KEY, etc.).
func New(providerName string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm coach: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm coach: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm coach: create %q backend: %w", providerName, err)
	}

	return &Provider{backend: backend, model: model}, nil
}

// NewOllama creates a Provider backed by Ollama (local inference).
// Without options, it connects to http://localhost:11434.
func NewOllama(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("ollama", model, opts...)
}

// NewOpenAI creates a Provider backed by OpenAI.
// Without options, it reads the OPENAI_API_KEY environment variable.
func NewOpenAI(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("openai", model, opts...)
}

// NewAnthropic creates a Provider backed by Anthropic.
// Without options, it reads the ANTHROPIC_API_KEY environment variable.
func NewAnthropic(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("anthropic", model, opts...)
}

// createBackend creates the underlying any-llm-go provider for the given
// provider name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// Coach implements coach.Provider by sending the analysis summary to the
// model and returning its feedback text.
func (p *Provider) Coach(ctx context.Context, req coach.Request) (string, error) {
	resp, err := p.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anyllm coach: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm coach: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}

// buildPrompt assembles the user prompt: metrics, rubric scores, and a
// bounded transcript excerpt.
func buildPrompt(req coach.Request) string {
	var b strings.Builder
	b.WriteString("Metrics:\n")
	b.Write(req.Metrics)
	b.WriteString("\n\nRubric Scores:\n")
	b.Write(req.Rubric)
	b.WriteString("\n\nTranscript (excerpt):\n")
	b.WriteString(excerpt(req.Transcript, transcriptExcerptLen))
	b.WriteString("\n\nWrite feedback: bullet points, prioritized, with small examples to try.")
	return b.String()
}

// excerpt truncates s to at most n bytes without splitting a UTF-8 sequence.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
