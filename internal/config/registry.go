package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/joke"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/summary"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Factory builds a provider of type T from its configuration entry.
type Factory[T any] func(ProviderEntry) (T, error)

// factories is one kind's name → constructor table.
type factories[T any] struct {
	kind string
	m    map[string]Factory[T]
}

func newFactories[T any](kind string) factories[T] {
	return factories[T]{kind: kind, m: make(map[string]Factory[T])}
}

func (f factories[T]) create(entry ProviderEntry) (T, error) {
	factory, ok := f.m[entry.Name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s/%q", ErrProviderNotRegistered, f.kind, entry.Name)
	}
	return factory(entry)
}

// Registry maps provider names to their constructor functions for each
// provider kind. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	joke      factories[joke.Provider]
	quote     factories[quote.Provider]
	summary   factories[summary.Provider]
	sentiment factories[sentiment.Analyzer]
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		joke:      newFactories[joke.Provider]("joke"),
		quote:     newFactories[quote.Provider]("quote"),
		summary:   newFactories[summary.Provider]("summary"),
		sentiment: newFactories[sentiment.Analyzer]("sentiment"),
	}
}

// RegisterJoke registers a joke provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterJoke(name string, factory Factory[joke.Provider]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joke.m[name] = factory
}

// RegisterQuote registers a quote provider factory under name.
func (r *Registry) RegisterQuote(name string, factory Factory[quote.Provider]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quote.m[name] = factory
}

// RegisterSummary registers a summary provider factory under name.
func (r *Registry) RegisterSummary(name string, factory Factory[summary.Provider]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.m[name] = factory
}

// RegisterSentiment registers a sentiment analyzer factory under name.
func (r *Registry) RegisterSentiment(name string, factory Factory[sentiment.Analyzer]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sentiment.m[name] = factory
}

// CreateJoke instantiates a joke provider using the factory registered under entry.Name.
// Returns [ErrProviderNotRegistered] if no factory has been registered for that name.
func (r *Registry) CreateJoke(entry ProviderEntry) (joke.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.joke.create(entry)
}

// CreateQuote instantiates a quote provider using the factory registered under entry.Name.
func (r *Registry) CreateQuote(entry ProviderEntry) (quote.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.quote.create(entry)
}

// CreateSummary instantiates a summary provider using the factory registered under entry.Name.
func (r *Registry) CreateSummary(entry ProviderEntry) (summary.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary.create(entry)
}

// CreateSentiment instantiates a sentiment analyzer using the factory registered under entry.Name.
func (r *Registry) CreateSentiment(entry ProviderEntry) (sentiment.Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sentiment.create(entry)
}

// Names returns the sorted provider names registered for kind ("joke",
// "quote", "summary" or "sentiment"). Unknown kinds yield nil.
func (r *Registry) Names(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch kind {
	case r.joke.kind:
		names = keys(r.joke.m)
	case r.quote.kind:
		names = keys(r.quote.m)
	case r.summary.kind:
		names = keys(r.summary.m)
	case r.sentiment.kind:
		names = keys(r.sentiment.m)
	default:
		return nil
	}
	slices.Sort(names)
	return names
}

func keys[T any](m map[string]Factory[T]) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
