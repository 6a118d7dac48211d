// Package anyllm provides a sentiment.Analyzer backed by
// github.com/mozilla-ai/any-llm-go, so any of its supported LLM backends can
// score sentiment.
//
// Usage:
//
//	a, err := anyllm.New("anthropic", "claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-..."))
//	a, err := anyllm.New("ollama", "llama3.2")
package anyllm

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/MrWong99/infobot/pkg/provider/sentiment"
)

// Backends lists the provider names accepted by New.
var Backends = []string{"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"}

const maxAnswerTokens = 8

var _ sentiment.Analyzer = (*Analyzer)(nil)

// Analyzer implements sentiment.Analyzer by wrapping an any-llm-go backend.
type Analyzer struct {
	backend anyllmlib.Provider
	name    string
	model   string
}

// New creates an Analyzer backed by the named LLM provider.
//
// opts are any-llm-go options (anyllmlib.WithAPIKey, anyllmlib.WithBaseURL).
// Without an API key option the backend reads its usual environment variable
// (ANTHROPIC_API_KEY, GEMINI_API_KEY, ...).
func New(providerName, model string, opts ...anyllmlib.Option) (*Analyzer, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	name := strings.ToLower(providerName)
	backend, err := createBackend(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &Analyzer{backend: backend, name: name, model: model}, nil
}

// Name returns the backend name, e.g. "anthropic".
func (a *Analyzer) Name() string {
	return a.name
}

func createBackend(name string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch name {
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
		return nil, fmt.Errorf("unsupported provider %q; supported: %s", name, strings.Join(Backends, ", "))
	}
}

// Polarity implements sentiment.Analyzer.
func (a *Analyzer) Polarity(ctx context.Context, text string) (float64, error) {
	resp, err := a.backend.Completion(ctx, buildParams(a.model, text))
	if err != nil {
		return 0, fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("anyllm: empty choices in response")
	}
	score, err := sentiment.ParseScore(resp.Choices[0].Message.ContentString())
	if err != nil {
		return 0, fmt.Errorf("anyllm: %w", err)
	}
	return score, nil
}

func buildParams(model, text string) anyllmlib.CompletionParams {
	temp := 0.0
	maxTokens := maxAnswerTokens
	return anyllmlib.CompletionParams{
		Model: model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: sentiment.Prompt},
			{Role: "user", Content: text},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
}
