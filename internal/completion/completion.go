// Package completion offers command completion and "did you mean" hints for
// chat surfaces.
//
// [Completer.Complete] is plain prefix completion over the command
// vocabulary. [Completer.Suggest] finds the command closest to a misspelt
// word in two stages:
//
//  1. Phonetic filtering: commands whose Double Metaphone codes overlap the
//     word's codes are accepted at a lower Jaro-Winkler threshold, because
//     sounding alike is strong evidence ("tyme" for "time").
//  2. Fuzzy fallback: other commands must reach the regular Jaro-Winkler
//     threshold (default 0.80).
//
// A phonetic candidate always beats a purely fuzzy one.
package completion

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultThreshold         = 0.80
	defaultPhoneticThreshold = 0.70
)

// Option configures a Completer.
type Option func(*Completer)

// WithThreshold sets the minimum Jaro-Winkler score for a suggestion without
// phonetic overlap.
func WithThreshold(t float64) Option {
	return func(c *Completer) {
		c.threshold = t
	}
}

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a suggestion
// that sounds like the word.
func WithPhoneticThreshold(t float64) Option {
	return func(c *Completer) {
		c.phoneticThreshold = t
	}
}

type command struct {
	name  string
	codes []string
}

// Completer is read-only after construction and safe for concurrent use.
type Completer struct {
	commands          []command
	threshold         float64
	phoneticThreshold float64
}

// New returns a Completer over the given command names.
func New(commands []string, opts ...Option) *Completer {
	c := &Completer{
		threshold:         defaultThreshold,
		phoneticThreshold: defaultPhoneticThreshold,
	}
	for _, name := range commands {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		c.commands = append(c.commands, command{name: name, codes: metaphone(name)})
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete returns the commands starting with prefix, in vocabulary order.
// An empty prefix returns every command.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd.name, prefix) {
			out = append(out, cmd.name)
		}
	}
	return out
}

// Suggest returns the command most similar to word. ok is false when no
// command is similar enough.
func (c *Completer) Suggest(word string) (suggestion string, score float64, ok bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", 0, false
	}
	codes := metaphone(word)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, cmd := range c.commands {
		s := matchr.JaroWinkler(word, cmd.name, false)
		phonetic := overlaps(codes, cmd.codes)
		switch {
		case phonetic && s >= c.phoneticThreshold:
			if !bestPhonetic || s > bestScore {
				best, bestScore, bestPhonetic = cmd.name, s, true
			}
		case !bestPhonetic && s >= c.threshold && s > bestScore:
			best, bestScore = cmd.name, s
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestScore, true
}

// SuggestAny returns the best suggestion for any of words. Words that already
// are commands are skipped.
func (c *Completer) SuggestAny(words []string) (suggestion string, ok bool) {
	var bestScore float64
	for _, w := range words {
		if c.isCommand(w) {
			continue
		}
		if s, score, found := c.Suggest(w); found && score > bestScore {
			suggestion, bestScore, ok = s, score, true
		}
	}
	return suggestion, ok
}

func (c *Completer) isCommand(w string) bool {
	w = strings.ToLower(w)
	return slices.ContainsFunc(c.commands, func(cmd command) bool { return cmd.name == w })
}

// metaphone returns the non-empty Double Metaphone codes of word.
func metaphone(word string) []string {
	p, s := matchr.DoubleMetaphone(word)
	var codes []string
	if p != "" {
		codes = append(codes, p)
	}
	if s != "" && s != p {
		codes = append(codes, s)
	}
	return codes
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
