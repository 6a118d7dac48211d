// Package mock provides a test double for the quote.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/quote"
)

// Provider is a mock implementation of quote.Provider.
type Provider struct {
	mu sync.Mutex

	// QuoteResult is returned by Quote.
	QuoteResult string

	// QuoteErr, if non-nil, is returned as the error from Quote.
	QuoteErr error

	calls int
}

// Quote records the call and returns QuoteResult, QuoteErr.
func (p *Provider) Quote(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.QuoteErr != nil {
		return "", p.QuoteErr
	}
	return p.QuoteResult, nil
}

// CallCount returns the number of recorded Quote calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var _ quote.Provider = (*Provider)(nil)
