package intent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/pkg/provider/joke"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/summary"
)

// DefaultCallTimeout bounds each provider call unless WithCallTimeout is used.
const DefaultCallTimeout = 10 * time.Second

// Deps are the providers the router calls. Any of them may be nil; an
// utterance that needs a missing provider yields a failed Result.
type Deps struct {
	Jokes     joke.Provider
	Quotes    quote.Provider
	Summaries summary.Provider
	Sentiment sentiment.Analyzer
}

// IntNer is a source of uniformly distributed ints in [0, n).
// *math/rand/v2.Rand satisfies it.
type IntNer interface {
	IntN(n int) int
}

// Namer is implemented by providers that report a stable name for metrics.
type Namer interface {
	Name() string
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Router classifies utterances and produces replies.
type Router struct {
	deps        Deps
	rules       []Rule
	now         func() time.Time
	rng         IntNer
	callTimeout time.Duration
	metrics     *observe.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithClock sets the time source used by the time intent.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRand sets the random source used to pick greeting replies.
func WithRand(rng IntNer) Option {
	return func(r *Router) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithCallTimeout bounds every provider call. Non-positive values are ignored.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.callTimeout = d
		}
	}
}

// WithMetrics records intent and provider metrics to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithRules replaces the routing table. The table should end with a rule
// that matches everything; otherwise unmatched input gets [FallbackReply].
func WithRules(rules []Rule) Option {
	return func(r *Router) {
		r.rules = rules
	}
}

// NewRouter returns a Router using deps and [DefaultRules].
func NewRouter(deps Deps, opts ...Option) *Router {
	r := &Router{
		deps:        deps,
		rules:       DefaultRules,
		now:         time.Now,
		rng:         globalRand{},
		callTimeout: DefaultCallTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Respond routes input and returns the reply. The input is lower-cased but
// not trimmed; the empty string is routed like any other input.
func (r *Router) Respond(ctx context.Context, input string) Result {
	lowered := strings.ToLower(input)

	ctx, span := observe.StartSpan(ctx, "intent.Respond")
	rule := r.match(lowered)
	span.SetAttributes(observe.Attr("intent", rule.Intent.String()))
	log := observe.Logger(ctx)
	log.Debug("routing input", "input", lowered, "intent", rule.Intent.String())

	text, err := rule.Handle(ctx, r, lowered)
	observe.EndSpan(span, err)

	status := observe.StatusOK
	if err != nil {
		status = observe.StatusError
		log.Warn("intent failed", "intent", rule.Intent.String(), "err", err)
	}
	if r.metrics != nil {
		r.metrics.RecordIntent(ctx, rule.Intent.String(), status)
	}
	if err != nil {
		return Result{Intent: rule.Intent, Err: err}
	}
	return Result{Intent: rule.Intent, Text: text}
}

func (r *Router) match(lowered string) Rule {
	for _, rule := range r.rules {
		if rule.Match(lowered) {
			return rule
		}
	}
	return Rule{Intent: Unknown, Match: always, Handle: fallback}
}

// call invokes fn once under the router's call timeout and wraps any failure
// in a *CollaboratorError of the given kind.
func call[T any](ctx context.Context, r *Router, kind string, provider any, configured bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !configured {
		return zero, &CollaboratorError{Kind: kind, Err: ErrNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	ctx, span := observe.StartSpan(ctx, "provider."+kind)
	ctx, servedBy := observe.TrackServedBy(ctx)

	start := time.Now()
	v, err := fn(ctx)
	if err == nil && ctx.Err() != nil {
		// The provider ignored cancellation; its answer arrived too late.
		err = ctx.Err()
	}
	// Fallback groups report the entry that actually handled the call.
	name := servedBy()
	if name == "" {
		name = providerName(provider)
	}
	span.SetAttributes(observe.Attr("provider", name))
	observe.EndSpan(span, err)
	if r.metrics != nil {
		r.metrics.RecordProviderCall(ctx, name, kind, time.Since(start), err)
	}
	if err != nil {
		return zero, &CollaboratorError{Kind: kind, Err: err}
	}
	return v, nil
}

func providerName(p any) string {
	if n, ok := p.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
