// Package lexicon provides an offline sentiment.Analyzer that scores text
// against a built-in word list.
//
// Each known word carries a polarity in [-1, 1]. An intensifier ("very",
// "extremely") directly before a word scales it, and a negation ("not",
// "never", "don't") within two tokens before a word flips it at half
// strength, so "not bad" is mildly positive rather than strongly so. The
// text's polarity is the mean of all scored words; text with no known words
// is neutral.
package lexicon

import (
	"context"
	"maps"
	"regexp"
	"strings"

	"github.com/MrWong99/infobot/pkg/provider/sentiment"
)

// negationWindow is how many tokens a negation stays active for.
const negationWindow = 2

// negationFactor is applied to a negated word's polarity.
const negationFactor = -0.5

var tokenPattern = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

// Words is the default polarity lexicon.
var Words = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"wonderful": 1.0, "fantastic": 0.4, "love": 0.5, "loved": 0.7, "lovely": 0.5,
	"like": 0.2, "nice": 0.6, "happy": 0.8, "glad": 0.5, "best": 1.0,
	"better": 0.5, "beautiful": 0.85, "fun": 0.3, "perfect": 1.0, "cool": 0.35,
	"enjoy": 0.4, "enjoyed": 0.4, "pleased": 0.5, "delighted": 0.8, "brilliant": 0.9,
	"fine": 0.4, "positive": 0.2, "thanks": 0.2, "thank": 0.2, "win": 0.8,
	"success": 0.3, "successful": 0.75, "exciting": 0.3, "excited": 0.4, "calm": 0.3,
	"kind": 0.6, "helpful": 0.5, "interesting": 0.5, "funny": 0.25, "smart": 0.2,
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "worst": -1.0,
	"worse": -0.4, "hate": -0.8, "hated": -0.9, "sad": -0.5, "angry": -0.5,
	"upset": -0.4, "annoyed": -0.4, "annoying": -0.8, "boring": -1.0, "bored": -0.5,
	"ugly": -0.7, "poor": -0.4, "wrong": -0.5, "broken": -0.4, "sick": -0.7,
	"tired": -0.4, "lonely": -0.5, "depressed": -0.6, "miserable": -1.0, "stupid": -0.8,
	"fail": -0.5, "failed": -0.5, "failure": -0.3, "problem": -0.3, "negative": -0.3,
	"disappointed": -0.75, "disappointing": -0.6, "scared": -0.6, "afraid": -0.6, "worried": -0.4,
	"hurt": -0.5, "pain": -0.4, "cry": -0.5, "crying": -0.5, "lost": -0.3,
}

// Intensifiers scale the polarity of the word that directly follows them.
var Intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "incredibly": 1.5,
	"super": 1.4, "totally": 1.3, "absolutely": 1.4, "quite": 1.1,
	"slightly": 0.5, "somewhat": 0.7, "barely": 0.4, "kinda": 0.7,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "nobody": {}, "neither": {},
	"nor": {}, "hardly": {}, "without": {},
}

var _ sentiment.Analyzer = (*Analyzer)(nil)

// Analyzer implements sentiment.Analyzer using a static lexicon. It holds no
// mutable state after construction.
type Analyzer struct {
	words        map[string]float64
	intensifiers map[string]float64
}

// Option is a functional option for Analyzer.
type Option func(*Analyzer)

// WithWords adds or overrides lexicon entries. Values are clamped to [-1, 1].
func WithWords(words map[string]float64) Option {
	return func(a *Analyzer) {
		for w, v := range words {
			a.words[strings.ToLower(w)] = sentiment.Clamp(v)
		}
	}
}

// New returns an Analyzer seeded with [Words] and [Intensifiers].
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		words:        maps.Clone(Words),
		intensifiers: maps.Clone(Intensifiers),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Polarity implements sentiment.Analyzer.
func (a *Analyzer) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.Score(text), nil
}

// Score returns the polarity of text without a context.
func (a *Analyzer) Score(text string) float64 {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	var (
		sum      float64
		n        int
		scale    = 1.0
		negateIn int
	)
	for _, tok := range tokens {
		if isNegation(tok) {
			negateIn = negationWindow
			continue
		}
		if m, ok := a.intensifiers[tok]; ok {
			scale *= m
			continue
		}
		v, ok := a.words[tok]
		if !ok {
			scale = 1.0
			if negateIn > 0 {
				negateIn--
			}
			continue
		}
		v *= scale
		if negateIn > 0 {
			v *= negationFactor
		}
		sum += v
		n++
		scale = 1.0
		negateIn = 0
	}
	if n == 0 {
		return 0
	}
	return sentiment.Clamp(sum / float64(n))
}

func isNegation(tok string) bool {
	if _, ok := negations[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}
