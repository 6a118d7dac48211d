// Package builtin provides an offline quote.Provider backed by a short list
// of well-known quotations.
package builtin

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/quote"
)

var _ quote.Provider = (*Provider)(nil)

// Quotes is the default quotation list.
var Quotes = []string{
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Simplicity is prerequisite for reliability. - Edsger W. Dijkstra",
	"Talk is cheap. Show me the code. - Linus Torvalds",
	"Premature optimization is the root of all evil. - Donald Knuth",
	"Clear is better than clever. - Rob Pike",
	"In the middle of difficulty lies opportunity. - Albert Einstein",
	"It always seems impossible until it's done. - Nelson Mandela",
	"Whether you think you can or you think you can't, you're right. - Henry Ford",
	"The best way to predict the future is to invent it. - Alan Kay",
	"Stay hungry, stay foolish. - Stewart Brand",
	"Well done is better than well said. - Benjamin Franklin",
	"A language that doesn't affect the way you think about programming is not worth knowing. - Alan Perlis",
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithRand sets the random source used to pick quotes.
func WithRand(r *rand.Rand) Option {
	return func(p *Provider) {
		p.rng = r
	}
}

// WithQuotes replaces the quotation list.
func WithQuotes(quotes []string) Option {
	return func(p *Provider) {
		p.quotes = quotes
	}
}

// Provider picks a random quotation from an in-memory list.
type Provider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	quotes []string
}

// New returns a Provider using [Quotes] unless overridden by options.
func New(opts ...Option) *Provider {
	p := &Provider{quotes: Quotes}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Quote implements quote.Provider.
func (p *Provider) Quote(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.quotes) == 0 {
		return "", errors.New("builtin quotes: quote list is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		return p.quotes[rand.IntN(len(p.quotes))], nil
	}
	return p.quotes[p.rng.IntN(len(p.quotes))], nil
}
