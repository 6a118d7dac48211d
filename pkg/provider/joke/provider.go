// Package joke defines the Provider interface for joke sources.
//
// A joke provider returns one self-contained joke per call. Implementations
// range from an offline list compiled into the binary to public HTTP APIs
// such as JokeAPI. The returned text is shown to the user verbatim, so
// implementations must flatten multi-part jokes (setup + punchline) into a
// single string.
//
// Implementations must be safe for concurrent use.
package joke

import "context"

// Provider is the abstraction over any joke source.
type Provider interface {
	// Joke returns one joke. Returns an error if the source is unreachable,
	// returns malformed data, or ctx is cancelled.
	Joke(ctx context.Context) (string, error)
}
