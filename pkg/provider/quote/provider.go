// Package quote defines the Provider interface for quotation sources.
//
// Implementations must be safe for concurrent use.
package quote

import "context"

// Provider is the abstraction over any quotation source.
type Provider interface {
	// Quote returns one quotation, including its attribution when the source
	// provides one. Returns an error if the source fails or ctx is cancelled.
	Quote(ctx context.Context) (string, error)
}
