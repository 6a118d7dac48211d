// Package openai provides a sentiment.Analyzer backed by the OpenAI Chat
// Completions API.
//
// The model is asked to answer with a single number in [-1, 1]; the answer is
// parsed with sentiment.ParseScore. Any OpenAI-compatible endpoint can be used
// via WithBaseURL.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/infobot/pkg/provider/sentiment"
)

// DefaultModel is used when New is called with an empty model.
const DefaultModel = "gpt-4o-mini"

// maxAnswerTokens bounds the reply; a score needs only a handful of tokens.
const maxAnswerTokens = 8

var _ sentiment.Analyzer = (*Analyzer)(nil)

// Analyzer implements sentiment.Analyzer using the OpenAI API.
type Analyzer struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL      string
	organization string
	timeout      time.Duration
}

// Option is a functional option for Analyzer.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithOrganization sets the OpenAI organization ID on all requests.
func WithOrganization(org string) Option {
	return func(c *config) {
		c.organization = org
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs an OpenAI sentiment Analyzer. Requests are never retried by
// the SDK; retry policy belongs to the caller.
func New(apiKey, model string, opts ...Option) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(cfg.organization))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Analyzer{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Model returns the configured model name.
func (a *Analyzer) Model() string {
	return a.model
}

// Polarity implements sentiment.Analyzer.
func (a *Analyzer) Polarity(ctx context.Context, text string) (float64, error) {
	resp, err := a.client.Chat.Completions.New(ctx, a.buildParams(text))
	if err != nil {
		return 0, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai: empty choices in response")
	}
	score, err := sentiment.ParseScore(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, fmt.Errorf("openai: %w", err)
	}
	return score, nil
}

func (a *Analyzer) buildParams(text string) oai.ChatCompletionNewParams {
	return oai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(sentiment.Prompt),
			oai.UserMessage(text),
		},
		Temperature:         param.NewOpt(0.0),
		MaxCompletionTokens: param.NewOpt(int64(maxAnswerTokens)),
	}
}
