// Package wikipedia provides a summary.Provider backed by the Wikipedia REST
// API.
//
// RandomSummary calls /api/rest_v1/page/random/summary, which redirects to
// the summary of a random article, and returns its plain-text "extract".
// Wikimedia asks API clients to send a descriptive User-Agent; set one with
// [WithUserAgent].
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrWong99/infobot/pkg/provider/summary"
)

// DefaultLanguage is the Wikipedia edition used when none is configured.
const DefaultLanguage = "en"

// DefaultUserAgent identifies InfoBot to the Wikimedia API.
const DefaultUserAgent = "InfoBot/1.0 (https://github.com/MrWong99/infobot)"

const maxBodyBytes = 2 << 20

var _ summary.Provider = (*Provider)(nil)

// Provider implements summary.Provider using Wikipedia random summaries.
type Provider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type config struct {
	baseURL   string
	language  string
	userAgent string
	timeout   time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithLanguage selects the Wikipedia edition ("en", "de", ...). Ignored when
// WithBaseURL is set.
func WithLanguage(lang string) Option {
	return func(c *config) {
		c.language = lang
	}
}

// WithBaseURL overrides the API host, e.g. for tests or a mirror.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a Wikipedia Provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &config{language: DefaultLanguage, userAgent: DefaultUserAgent}
	for _, o := range opts {
		o(cfg)
	}

	base := cfg.baseURL
	if base == "" {
		lang := strings.TrimSpace(cfg.language)
		if lang == "" {
			lang = DefaultLanguage
		}
		if strings.ContainsAny(lang, "/.:") {
			return nil, fmt.Errorf("wikipedia: invalid language %q", lang)
		}
		base = "https://" + lang + ".wikipedia.org"
	}

	client := &http.Client{}
	if cfg.timeout > 0 {
		client.Timeout = cfg.timeout
	}
	return &Provider{
		baseURL:    strings.TrimRight(base, "/"),
		userAgent:  cfg.userAgent,
		httpClient: client,
	}, nil
}

// BaseURL returns the resolved API host.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// RandomSummary implements summary.Provider.
func (p *Provider) RandomSummary(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/rest_v1/page/random/summary", nil)
	if err != nil {
		return "", fmt.Errorf("wikipedia: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("wikipedia: read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("wikipedia: response is not valid JSON")
	}

	// Stub articles carry an empty extract; that is a valid, empty summary.
	if !gjson.GetBytes(body, "title").Exists() {
		return "", fmt.Errorf("wikipedia: response has no article")
	}
	return strings.TrimSpace(gjson.GetBytes(body, "extract").String()), nil
}
