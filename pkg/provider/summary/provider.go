// Package summary defines the Provider interface for knowledge-summary
// backends.
//
// A summary provider picks a topic on its own (typically a random
// encyclopedia article) and returns a plain-text summary of it. Summaries may
// be arbitrarily long; callers are responsible for any truncation.
//
// Implementations must be safe for concurrent use.
package summary

import "context"

// Provider is the abstraction over any knowledge-summary backend.
type Provider interface {
	// RandomSummary returns the plain-text summary of a provider-chosen topic.
	// Returns an error if the backend fails, the summary is empty, or ctx is
	// cancelled.
	RandomSummary(ctx context.Context) (string, error)
}
