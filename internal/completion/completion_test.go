package completion_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/infobot/internal/completion"
)

var commands = []string{"joke", "quote", "fact", "time", "sentiment", "help"}

func TestComplete(t *testing.T) {
	t.Parallel()
	c := completion.New(commands)
	tests := []struct {
		prefix string
		want   []string
	}{
		{"", commands},
		{"j", []string{"joke"}},
		{"S", []string{"sentiment"}},
		{" qu", []string{"quote"}},
		{"x", []string{}},
		{"jokes", []string{}},
	}
	for _, tt := range tests {
		if got := c.Complete(tt.prefix); !slices.Equal(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestSuggest_Misspellings(t *testing.T) {
	t.Parallel()
	c := completion.New(commands)
	tests := []struct {
		word string
		want string
	}{
		{"jokr", "joke"},
		{"hepl", "help"},
		{"tyme", "time"},
		{"qoute", "quote"},
		{"sentimnt", "sentiment"},
	}
	for _, tt := range tests {
		got, score, ok := c.Suggest(tt.word)
		if !ok {
			t.Errorf("Suggest(%q): no suggestion, want %q", tt.word, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.word, got, tt.want)
		}
		if score <= 0 || score > 1 {
			t.Errorf("Suggest(%q) score = %f, want in (0, 1]", tt.word, score)
		}
	}
}

func TestSuggest_NoMatch(t *testing.T) {
	t.Parallel()
	c := completion.New(commands)
	for _, w := range []string{"banana", "xyz", "", "   "} {
		if got, _, ok := c.Suggest(w); ok {
			t.Errorf("Suggest(%q) = %q, want no suggestion", w, got)
		}
	}
}

func TestSuggest_ThresholdOption(t *testing.T) {
	t.Parallel()
	strict := completion.New(commands, completion.WithThreshold(0.99), completion.WithPhoneticThreshold(0.99))
	if got, _, ok := strict.Suggest("jokr"); ok {
		t.Errorf("strict Suggest(jokr) = %q, want none", got)
	}
}

func TestSuggestAny(t *testing.T) {
	t.Parallel()
	c := completion.New(commands)

	got, ok := c.SuggestAny([]string{"tell", "me", "a", "jokr"})
	if !ok || got != "joke" {
		t.Errorf("SuggestAny = %q, %v; want joke", got, ok)
	}
	if got, ok := c.SuggestAny([]string{"unknown", "gibberish", "xyz"}); ok {
		t.Errorf("SuggestAny(gibberish) = %q, want none", got)
	}
	if got, ok := c.SuggestAny(nil); ok {
		t.Errorf("SuggestAny(nil) = %q, want none", got)
	}
}
