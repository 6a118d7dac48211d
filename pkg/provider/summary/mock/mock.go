// Package mock provides a test double for the summary.Provider interface.
//
// Set Block to make RandomSummary wait for ctx cancellation, which lets tests
// exercise caller-side timeouts without a live backend.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/summary"
)

// Provider is a mock implementation of summary.Provider.
type Provider struct {
	mu sync.Mutex

	// SummaryResult is returned by RandomSummary.
	SummaryResult string

	// SummaryErr, if non-nil, is returned as the error from RandomSummary.
	SummaryErr error

	// Block makes RandomSummary wait until ctx is done and return ctx.Err().
	Block bool

	calls int
}

// RandomSummary records the call and returns SummaryResult, SummaryErr.
func (p *Provider) RandomSummary(ctx context.Context) (string, error) {
	p.mu.Lock()
	p.calls++
	block, result, err := p.Block, p.SummaryResult, p.SummaryErr
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

// CallCount returns the number of recorded RandomSummary calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var _ summary.Provider = (*Provider)(nil)
