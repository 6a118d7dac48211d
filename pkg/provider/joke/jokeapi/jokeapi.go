// Package jokeapi provides a joke.Provider backed by JokeAPI
// (https://v2.jokeapi.dev).
//
// JokeAPI returns either a "single" joke or a "twopart" joke consisting of a
// setup and a delivery. Two-part jokes are flattened into one line separated
// by a space so the caller can display them verbatim.
//
// Example usage:
//
//	p, err := jokeapi.New("", jokeapi.WithCategory("Programming"))
//	text, err := p.Joke(ctx)
package jokeapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrWong99/infobot/pkg/provider/joke"
)

// DefaultBaseURL is the public JokeAPI endpoint.
const DefaultBaseURL = "https://v2.jokeapi.dev"

// DefaultCategory is used when no category is configured.
const DefaultCategory = "Any"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

var _ joke.Provider = (*Provider)(nil)

// Provider implements joke.Provider using the JokeAPI REST endpoint.
// It is safe for concurrent use.
type Provider struct {
	baseURL    string
	category   string
	safeMode   bool
	httpClient *http.Client
}

type config struct {
	category string
	safeMode bool
	timeout  time.Duration
	client   *http.Client
}

// Option is a functional option for Provider.
type Option func(*config)

// WithCategory selects a JokeAPI category ("Programming", "Misc", "Pun",
// "Any", ...). Multiple categories may be joined with commas.
func WithCategory(category string) Option {
	return func(c *config) {
		c.category = category
	}
}

// WithSafeMode toggles JokeAPI's safe-mode filter. Enabled by default.
func WithSafeMode(enabled bool) Option {
	return func(c *config) {
		c.safeMode = enabled
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when a
// client is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// New constructs a JokeAPI Provider. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("jokeapi: invalid base url %q: %w", baseURL, err)
	}

	cfg := &config{category: DefaultCategory, safeMode: true}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.category == "" {
		cfg.category = DefaultCategory
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{}
		if cfg.timeout > 0 {
			client.Timeout = cfg.timeout
		}
	}

	return &Provider{
		baseURL:    baseURL,
		category:   cfg.category,
		safeMode:   cfg.safeMode,
		httpClient: client,
	}, nil
}

// Joke implements joke.Provider.
func (p *Provider) Joke(ctx context.Context) (string, error) {
	endpoint := p.baseURL + "/joke/" + url.PathEscape(p.category)
	if p.safeMode {
		endpoint += "?safe-mode"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("jokeapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("jokeapi: http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("jokeapi: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jokeapi: unexpected status %d", resp.StatusCode)
	}
	return parseJoke(body)
}

// parseJoke extracts the joke text from a JokeAPI response body.
func parseJoke(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("jokeapi: response is not valid JSON")
	}
	res := gjson.ParseBytes(body)
	if res.Get("error").Bool() {
		return "", fmt.Errorf("jokeapi: api error: %s", res.Get("message").String())
	}

	switch kind := res.Get("type").String(); kind {
	case "single":
		text := strings.TrimSpace(res.Get("joke").String())
		if text == "" {
			return "", fmt.Errorf("jokeapi: empty joke in response")
		}
		return text, nil
	case "twopart":
		setup := strings.TrimSpace(res.Get("setup").String())
		delivery := strings.TrimSpace(res.Get("delivery").String())
		if setup == "" || delivery == "" {
			return "", fmt.Errorf("jokeapi: incomplete two-part joke in response")
		}
		return setup + " " + delivery, nil
	default:
		return "", fmt.Errorf("jokeapi: unknown joke type %q", kind)
	}
}
