// Package intent routes a single chat utterance to a reply.
//
// A [Router] lower-cases its input and walks an ordered rule table
// ([DefaultRules]); the first rule whose predicate matches produces the
// reply. Rules that need outside data (jokes, quotes, encyclopedia summaries,
// sentiment scores) call the providers injected through [Deps]. Every
// provider call is bounded by a timeout and made exactly once; failures come
// back as a [Result] with a non-nil Err, never as a panic.
//
// Each utterance is classified on its own. The router keeps no conversation
// state and is safe for concurrent use.
package intent

import (
	"regexp"
	"slices"
	"strings"
)

// Intent is the category an utterance was classified as.
type Intent int

const (
	Unknown Intent = iota
	Greeting
	Joke
	Quote
	Sentiment
	Fact
	Time
	Help
)

var intentNames = [...]string{
	Unknown:   "unknown",
	Greeting:  "greeting",
	Joke:      "joke",
	Quote:     "quote",
	Sentiment: "sentiment",
	Fact:      "fact",
	Time:      "time",
	Help:      "help",
}

// String returns the lower-case intent name.
func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[i]
}

// Result is the outcome of routing one utterance. Err is nil on success, in
// which case Text holds the reply. On failure Text is empty and Err describes
// why; provider failures are *CollaboratorError values.
type Result struct {
	Intent Intent
	Text   string
	Err    error
}

// OK reports whether the utterance produced a reply.
func (r Result) OK() bool {
	return r.Err == nil
}

var commands = []string{"joke", "quote", "fact", "time", "sentiment", "help"}

// Commands returns the command vocabulary advertised to users, in help order.
func Commands() []string {
	return slices.Clone(commands)
}

// Classify reports which intent input would be routed to without invoking
// any handler.
func Classify(input string) Intent {
	lowered := strings.ToLower(input)
	for _, rule := range DefaultRules {
		if rule.Match(lowered) {
			return rule.Intent
		}
	}
	return Unknown
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Tokenize splits the lower-cased input into word tokens.
func Tokenize(input string) []string {
	return wordPattern.FindAllString(strings.ToLower(input), -1)
}
