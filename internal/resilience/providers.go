package resilience

import (
	"context"

	"github.com/MrWong99/infobot/pkg/provider/joke"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/summary"
)

var (
	_ joke.Provider      = (*JokeFallback)(nil)
	_ quote.Provider     = (*QuoteFallback)(nil)
	_ summary.Provider   = (*SummaryFallback)(nil)
	_ sentiment.Analyzer = (*SentimentFallback)(nil)
)

// JokeFallback implements [joke.Provider] with failover across several joke
// sources.
type JokeFallback struct {
	*FallbackGroup[joke.Provider]
}

// NewJokeFallback creates a [JokeFallback] with primary as the preferred source.
func NewJokeFallback(primary joke.Provider, primaryName string, cfg FallbackConfig) *JokeFallback {
	return &JokeFallback{NewFallbackGroup(primary, primaryName, cfg)}
}

// Joke returns a joke from the first healthy source.
func (f *JokeFallback) Joke(ctx context.Context) (string, error) {
	return ExecuteWithResult(ctx, f.FallbackGroup, func(ctx context.Context, p joke.Provider) (string, error) {
		return p.Joke(ctx)
	})
}

// QuoteFallback implements [quote.Provider] with failover.
type QuoteFallback struct {
	*FallbackGroup[quote.Provider]
}

// NewQuoteFallback creates a [QuoteFallback] with primary as the preferred source.
func NewQuoteFallback(primary quote.Provider, primaryName string, cfg FallbackConfig) *QuoteFallback {
	return &QuoteFallback{NewFallbackGroup(primary, primaryName, cfg)}
}

// Quote returns a quote from the first healthy source.
func (f *QuoteFallback) Quote(ctx context.Context) (string, error) {
	return ExecuteWithResult(ctx, f.FallbackGroup, func(ctx context.Context, p quote.Provider) (string, error) {
		return p.Quote(ctx)
	})
}

// SummaryFallback implements [summary.Provider] with failover.
type SummaryFallback struct {
	*FallbackGroup[summary.Provider]
}

// NewSummaryFallback creates a [SummaryFallback] with primary as the preferred source.
func NewSummaryFallback(primary summary.Provider, primaryName string, cfg FallbackConfig) *SummaryFallback {
	return &SummaryFallback{NewFallbackGroup(primary, primaryName, cfg)}
}

// RandomSummary returns a summary from the first healthy source.
func (f *SummaryFallback) RandomSummary(ctx context.Context) (string, error) {
	return ExecuteWithResult(ctx, f.FallbackGroup, func(ctx context.Context, p summary.Provider) (string, error) {
		return p.RandomSummary(ctx)
	})
}

// SentimentFallback implements [sentiment.Analyzer] with failover. A typical
// chain puts a hosted model first and the offline lexicon last.
type SentimentFallback struct {
	*FallbackGroup[sentiment.Analyzer]
}

// NewSentimentFallback creates a [SentimentFallback] with primary as the
// preferred analyzer.
func NewSentimentFallback(primary sentiment.Analyzer, primaryName string, cfg FallbackConfig) *SentimentFallback {
	return &SentimentFallback{NewFallbackGroup(primary, primaryName, cfg)}
}

// Polarity scores text with the first healthy analyzer.
func (f *SentimentFallback) Polarity(ctx context.Context, text string) (float64, error) {
	return ExecuteWithResult(ctx, f.FallbackGroup, func(ctx context.Context, a sentiment.Analyzer) (float64, error) {
		return a.Polarity(ctx, text)
	})
}
