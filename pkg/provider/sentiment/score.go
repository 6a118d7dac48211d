package sentiment

import (
	"fmt"
	"regexp"
	"strconv"
)

// Prompt is the system instruction sent to language-model analyzers. It asks
// for a bare number so that [ParseScore] can read the answer.
const Prompt = "You are a sentiment classifier. Rate the overall sentiment of the user's message " +
	"as a single decimal number between -1.0 (very negative) and 1.0 (very positive), " +
	"where 0 means neutral. Reply with the number only."

var scorePattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// ParseScore extracts the first decimal number from a model answer and clamps
// it to [-1, 1]. Models occasionally wrap the number in prose ("Score: 0.6"),
// which is tolerated.
func ParseScore(answer string) (float64, error) {
	m := scorePattern.FindString(answer)
	if m == "" {
		return 0, fmt.Errorf("sentiment: no score in answer %q", answer)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("sentiment: parse score %q: %w", m, err)
	}
	return Clamp(v), nil
}
