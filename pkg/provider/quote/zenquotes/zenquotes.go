// Package zenquotes provides a quote.Provider backed by the ZenQuotes API
// (https://zenquotes.io).
//
// The /api/random endpoint returns a one-element JSON array of the form
// [{"q": "<quote>", "a": "<author>"}]. The provider renders it as
// "<quote> - <author>", dropping the attribution when the author is empty.
package zenquotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrWong99/infobot/pkg/provider/quote"
)

// DefaultBaseURL is the public ZenQuotes endpoint.
const DefaultBaseURL = "https://zenquotes.io"

const maxBodyBytes = 1 << 20

var _ quote.Provider = (*Provider)(nil)

// Provider implements quote.Provider using ZenQuotes.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// New constructs a ZenQuotes Provider. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Quote implements quote.Provider.
func (p *Provider) Quote(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/random", nil)
	if err != nil {
		return "", fmt.Errorf("zenquotes: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("zenquotes: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zenquotes: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("zenquotes: read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("zenquotes: response is not valid JSON")
	}

	text := strings.TrimSpace(gjson.GetBytes(body, "0.q").String())
	if text == "" {
		return "", fmt.Errorf("zenquotes: empty quote in response")
	}
	author := strings.TrimSpace(gjson.GetBytes(body, "0.a").String())
	if author == "" {
		return text, nil
	}
	return text + " - " + author, nil
}
