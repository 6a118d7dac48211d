package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrWong99/infobot/internal/config"
	"github.com/MrWong99/infobot/internal/health"
	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/resilience"
	"github.com/MrWong99/infobot/pkg/provider/joke"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/summary"
)

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by [BuildProviders] or directly by
// tests.
type Providers struct {
	Jokes     joke.Provider
	Quotes    quote.Provider
	Summaries summary.Provider
	Sentiment sentiment.Analyzer
}

// Deps converts p into the router's dependency set.
func (p *Providers) Deps() intent.Deps {
	return intent.Deps{
		Jokes:     p.Jokes,
		Quotes:    p.Quotes,
		Summaries: p.Summaries,
		Sentiment: p.Sentiment,
	}
}

// Checkers returns one readiness checker per provider kind. Slots backed by
// a fallback group report breaker state; the rest only report whether they
// are configured.
func (p *Providers) Checkers() []health.Checker {
	slots := []struct {
		kind string
		v    any
	}{
		{intent.KindJoke, p.Jokes},
		{intent.KindQuote, p.Quotes},
		{intent.KindSummary, p.Summaries},
		{intent.KindSentiment, p.Sentiment},
	}
	checkers := make([]health.Checker, 0, len(slots))
	for _, s := range slots {
		if g, ok := s.v.(health.StatusReporter); ok {
			checkers = append(checkers, health.Breakers(s.kind, g))
			continue
		}
		checkers = append(checkers, health.Configured(s.kind, s.v != nil))
	}
	return checkers
}

type named[T any] struct {
	name     string
	provider T
}

// BuildProviders instantiates every provider named in cfg through reg and
// wraps each kind in a resilience fallback group: the primary entry first,
// then the configured fallbacks in order. Entries whose name is not
// registered are skipped with a warning; any other construction error is
// fatal.
func BuildProviders(cfg *config.Config, reg *config.Registry) (*Providers, error) {
	fcfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.Resilience.MaxFailures,
			ResetTimeout: cfg.Resilience.ResetTimeout,
		},
	}
	ps := &Providers{}

	jokes, err := create(intent.KindJoke, cfg.Providers.Joke, cfg.Fallbacks.Joke, reg.CreateJoke)
	if err != nil {
		return nil, err
	}
	if len(jokes) > 0 {
		ps.Jokes = chain(jokes, resilience.NewJokeFallback, fcfg)
	}

	quotes, err := create(intent.KindQuote, cfg.Providers.Quote, cfg.Fallbacks.Quote, reg.CreateQuote)
	if err != nil {
		return nil, err
	}
	if len(quotes) > 0 {
		ps.Quotes = chain(quotes, resilience.NewQuoteFallback, fcfg)
	}

	summaries, err := create(intent.KindSummary, cfg.Providers.Summary, cfg.Fallbacks.Summary, reg.CreateSummary)
	if err != nil {
		return nil, err
	}
	if len(summaries) > 0 {
		ps.Summaries = chain(summaries, resilience.NewSummaryFallback, fcfg)
	}

	analyzers, err := create(intent.KindSentiment, cfg.Providers.Sentiment, cfg.Fallbacks.Sentiment, reg.CreateSentiment)
	if err != nil {
		return nil, err
	}
	if len(analyzers) > 0 {
		ps.Sentiment = chain(analyzers, resilience.NewSentimentFallback, fcfg)
	}

	return ps, nil
}

func create[T any](kind string, primary config.ProviderEntry, fallbacks []config.ProviderEntry, factory func(config.ProviderEntry) (T, error)) ([]named[T], error) {
	entries := append([]config.ProviderEntry{primary}, fallbacks...)
	var out []named[T]
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		p, err := factory(e)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Warn("provider not registered, skipping", "kind", kind, "name", e.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("app: create %s provider %q: %w", kind, e.Name, err)
		}
		slog.Info("provider created", "kind", kind, "name", e.Name)
		out = append(out, named[T]{name: e.Name, provider: p})
	}
	return out, nil
}

// chain builds a fallback group from ns, which must not be empty.
func chain[T any, G interface{ AddFallback(string, T) }](ns []named[T], newGroup func(T, string, resilience.FallbackConfig) G, cfg resilience.FallbackConfig) G {
	g := newGroup(ns[0].provider, ns[0].name, cfg)
	for _, n := range ns[1:] {
		g.AddFallback(n.name, n.provider)
	}
	return g
}
