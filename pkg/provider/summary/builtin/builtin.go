// Package builtin provides an offline summary.Provider that returns one of a
// handful of short encyclopedic facts. It is meant as a fallback when the
// network-backed summary provider is unreachable.
package builtin

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/summary"
)

var _ summary.Provider = (*Provider)(nil)

// Facts is the default fact list.
var Facts = []string{
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still edible.",
	"Octopuses have three hearts. Two pump blood through the gills, while the third pumps it through the rest of the body.",
	"A day on Venus is longer than a year on Venus. The planet takes about 243 Earth days to rotate once and about 225 Earth days to orbit the Sun.",
	"Bananas are berries in the botanical sense, while strawberries are not.",
	"The Eiffel Tower can be around 15 cm taller in summer, because thermal expansion makes the iron grow in the heat.",
	"Wombats produce cube-shaped droppings, which helps keep them from rolling away.",
	"The shortest war in recorded history was fought between Britain and Zanzibar in 1896 and lasted less than an hour.",
	"Sharks existed before trees. The earliest sharks appeared around 450 million years ago, the earliest trees around 385 million years ago.",
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithRand sets the random source used to pick facts.
func WithRand(r *rand.Rand) Option {
	return func(p *Provider) {
		p.rng = r
	}
}

// WithFacts replaces the fact list.
func WithFacts(facts []string) Option {
	return func(p *Provider) {
		p.facts = facts
	}
}

// Provider returns random entries from an in-memory fact list.
type Provider struct {
	mu    sync.Mutex
	rng   *rand.Rand
	facts []string
}

// New returns a Provider using [Facts] unless overridden by options.
func New(opts ...Option) *Provider {
	p := &Provider{facts: Facts}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RandomSummary implements summary.Provider.
func (p *Provider) RandomSummary(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.facts) == 0 {
		return "", errors.New("builtin summaries: fact list is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		return p.facts[rand.IntN(len(p.facts))], nil
	}
	return p.facts[p.rng.IntN(len(p.facts))], nil
}
