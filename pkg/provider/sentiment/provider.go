// Package sentiment defines the Analyzer interface for sentiment polarity
// backends.
//
// Polarity is a signed score in [-1.0, 1.0]: negative values indicate
// negative sentiment, positive values positive sentiment and 0 neutral text.
// Analyzers score the whole text they are given; they do not try to locate a
// subject or entity inside it.
//
// Implementations must be safe for concurrent use.
package sentiment

import "context"

// Analyzer is the abstraction over any sentiment polarity backend.
type Analyzer interface {
	// Polarity scores text and returns a value in [-1.0, 1.0].
	// Returns an error if the backend fails or ctx is cancelled.
	Polarity(ctx context.Context, text string) (float64, error)
}

// Clamp limits p to the closed range [-1, 1]. Analyzers backed by language
// models use it to normalise out-of-range answers.
func Clamp(p float64) float64 {
	switch {
	case p > 1:
		return 1
	case p < -1:
		return -1
	}
	return p
}
