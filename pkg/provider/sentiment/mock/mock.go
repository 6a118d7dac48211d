// Package mock provides a test double for the sentiment.Analyzer interface.
//
// Example:
//
//	a := &mock.Analyzer{PolarityResult: 0.5}
//	p, _ := a.Polarity(ctx, "what a lovely day")
//	// a.PolarityCalls[0].Text == "what a lovely day"
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/infobot/pkg/provider/sentiment"
)

// PolarityCall records a single invocation of Polarity.
type PolarityCall struct {
	// Ctx is the context passed to Polarity.
	Ctx context.Context
	// Text is the text passed to Polarity.
	Text string
}

// Analyzer is a mock implementation of sentiment.Analyzer.
type Analyzer struct {
	mu sync.Mutex

	// PolarityResult is returned by Polarity.
	PolarityResult float64

	// PolarityErr, if non-nil, is returned as the error from Polarity.
	PolarityErr error

	// PolarityCalls records every call to Polarity in order.
	PolarityCalls []PolarityCall
}

// Polarity records the call and returns PolarityResult, PolarityErr.
func (a *Analyzer) Polarity(ctx context.Context, text string) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.PolarityCalls = append(a.PolarityCalls, PolarityCall{Ctx: ctx, Text: text})
	if a.PolarityErr != nil {
		return 0, a.PolarityErr
	}
	return a.PolarityResult, nil
}

// Calls returns a copy of the recorded calls. Thread-safe.
func (a *Analyzer) Calls() []PolarityCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PolarityCall, len(a.PolarityCalls))
	copy(out, a.PolarityCalls)
	return out
}

var _ sentiment.Analyzer = (*Analyzer)(nil)
