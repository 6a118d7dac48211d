// Package builtin provides an offline joke.Provider backed by a list of
// programmer jokes compiled into the binary.
//
// It needs no network access and never fails, which makes it a good last
// entry in a fallback chain.
package builtin

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/joke"
)

var _ joke.Provider = (*Provider)(nil)

// Jokes is the default joke list.
var Jokes = []string{
	"There are 10 types of people in the world: those who understand binary and those who don't.",
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"A SQL query walks into a bar, walks up to two tables and asks: can I join you?",
	"How many programmers does it take to change a light bulb? None, that's a hardware problem.",
	"Why did the developer go broke? Because he used up all his cache.",
	"I would tell you a UDP joke, but you might not get it.",
	"Debugging is like being the detective in a crime movie where you are also the murderer.",
	"Why do Java developers wear glasses? Because they don't C#.",
	"A programmer's partner says: go to the store and buy a loaf of bread, if they have eggs, buy a dozen. The programmer comes home with twelve loaves.",
	"It works on my machine. Then we'll ship your machine.",
	"There are two hard things in computer science: cache invalidation, naming things, and off-by-one errors.",
	"Why was the function sad after the party? It didn't get called back.",
	"Knock knock. Race condition. Who's there?",
	"I've got a really good UDP joke to tell you but I don't know if you'll get it.",
	"To understand recursion, you must first understand recursion.",
	"Why did the programmer quit his job? Because he didn't get arrays.",
	"An optimist says the glass is half full. A pessimist says it is half empty. A programmer says the glass is twice as large as necessary.",
	"Git happens.",
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithRand sets the random source used to pick jokes. The source is guarded
// by the provider's mutex, so an unsynchronised *rand.Rand is fine.
func WithRand(r *rand.Rand) Option {
	return func(p *Provider) {
		p.rng = r
	}
}

// WithJokes replaces the joke list.
func WithJokes(jokes []string) Option {
	return func(p *Provider) {
		p.jokes = jokes
	}
}

// Provider picks a random joke from an in-memory list.
type Provider struct {
	mu    sync.Mutex
	rng   *rand.Rand
	jokes []string
}

// New returns a Provider using [Jokes] and the global random source unless
// overridden by options.
func New(opts ...Option) *Provider {
	p := &Provider{jokes: Jokes}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Joke implements joke.Provider.
func (p *Provider) Joke(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.jokes) == 0 {
		return "", errors.New("builtin jokes: joke list is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		return p.jokes[rand.IntN(len(p.jokes))], nil
	}
	return p.jokes[p.rng.IntN(len(p.jokes))], nil
}
