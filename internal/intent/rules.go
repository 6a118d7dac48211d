package intent

import (
	"context"
	"strings"
	"unicode/utf8"
)

// MaxFactRunes is the length summaries are cut to.
const MaxFactRunes = 200

// Fixed replies.
const (
	FallbackReply = "I don't understand that. Please ask me something else."
	PositiveReply = "That sounds positive!"
	NegativeReply = "Seems a bit negative. Is everything okay?"
	NeutralReply  = "I sense a neutral sentiment."
	timePrefix    = "The current time is "
	timeLayout    = "03:04 PM"
	helpPrefix    = "Available commands: "
)

// Greetings are the exact utterances recognised as a greeting.
var Greetings = []string{"hello", "hi", "hey", "howdy"}

// GreetingReplies are the replies a greeting is answered with, picked
// uniformly at random.
var GreetingReplies = []string{"Hello!", "Hi there!", "Hey!", "How can I help you today?"}

// Rule pairs a predicate over the lower-cased input with the handler that
// produces the reply.
type Rule struct {
	Intent Intent
	Match  func(lowered string) bool
	Handle func(ctx context.Context, r *Router, lowered string) (string, error)
}

// DefaultRules is the routing table in priority order. The first matching
// rule wins; the last rule matches everything.
var DefaultRules = []Rule{
	{Intent: Greeting, Match: isGreeting, Handle: greet},
	{Intent: Joke, Match: contains("joke"), Handle: tellJoke},
	{Intent: Quote, Match: contains("quote"), Handle: tellQuote},
	{Intent: Sentiment, Match: contains("sentiment"), Handle: judgeSentiment},
	{Intent: Fact, Match: contains("fact"), Handle: tellFact},
	{Intent: Time, Match: contains("time"), Handle: tellTime},
	{Intent: Help, Match: contains("help"), Handle: help},
	{Intent: Unknown, Match: always, Handle: fallback},
}

func isGreeting(lowered string) bool {
	for _, g := range Greetings {
		if lowered == g {
			return true
		}
	}
	return false
}

func contains(keyword string) func(string) bool {
	return func(lowered string) bool {
		return strings.Contains(lowered, keyword)
	}
}

func always(string) bool { return true }

func greet(_ context.Context, r *Router, _ string) (string, error) {
	return GreetingReplies[r.rng.IntN(len(GreetingReplies))], nil
}

func tellJoke(ctx context.Context, r *Router, _ string) (string, error) {
	return call(ctx, r, KindJoke, r.deps.Jokes, r.deps.Jokes != nil, func(ctx context.Context) (string, error) {
		return r.deps.Jokes.Joke(ctx)
	})
}

func tellQuote(ctx context.Context, r *Router, _ string) (string, error) {
	return call(ctx, r, KindQuote, r.deps.Quotes, r.deps.Quotes != nil, func(ctx context.Context) (string, error) {
		return r.deps.Quotes.Quote(ctx)
	})
}

func judgeSentiment(ctx context.Context, r *Router, lowered string) (string, error) {
	polarity, err := call(ctx, r, KindSentiment, r.deps.Sentiment, r.deps.Sentiment != nil, func(ctx context.Context) (float64, error) {
		return r.deps.Sentiment.Polarity(ctx, lowered)
	})
	if err != nil {
		return "", err
	}
	switch {
	case polarity > 0:
		return PositiveReply, nil
	case polarity < 0:
		return NegativeReply, nil
	default:
		return NeutralReply, nil
	}
}

func tellFact(ctx context.Context, r *Router, _ string) (string, error) {
	summary, err := call(ctx, r, KindSummary, r.deps.Summaries, r.deps.Summaries != nil, func(ctx context.Context) (string, error) {
		return r.deps.Summaries.RandomSummary(ctx)
	})
	if err != nil {
		return "", err
	}
	return truncateRunes(summary, MaxFactRunes), nil
}

func tellTime(_ context.Context, r *Router, _ string) (string, error) {
	return timePrefix + r.now().Format(timeLayout), nil
}

func help(_ context.Context, _ *Router, _ string) (string, error) {
	return helpPrefix + strings.Join(commands, ", "), nil
}

func fallback(_ context.Context, _ *Router, _ string) (string, error) {
	return FallbackReply, nil
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
