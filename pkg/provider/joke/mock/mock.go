// Package mock provides a test double for the joke.Provider interface.
//
// Example:
//
//	p := &mock.Provider{JokeResult: "Why do programmers prefer dark mode?"}
//	text, _ := p.Joke(ctx)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/joke"
)

// JokeCall records a single invocation of Joke.
type JokeCall struct {
	// Ctx is the context passed to Joke.
	Ctx context.Context
}

// Provider is a mock implementation of joke.Provider.
type Provider struct {
	mu sync.Mutex

	// JokeResult is returned by Joke.
	JokeResult string

	// JokeErr, if non-nil, is returned as the error from Joke.
	JokeErr error

	// JokeCalls records every call to Joke in order.
	JokeCalls []JokeCall
}

// Joke records the call and returns JokeResult, JokeErr.
func (p *Provider) Joke(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.JokeCalls = append(p.JokeCalls, JokeCall{Ctx: ctx})
	if p.JokeErr != nil {
		return "", p.JokeErr
	}
	return p.JokeResult, nil
}

// CallCount returns the number of recorded Joke calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.JokeCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.JokeCalls = nil
}

// Ensure Provider implements joke.Provider at compile time.
var _ joke.Provider = (*Provider)(nil)
