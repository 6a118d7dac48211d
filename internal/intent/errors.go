package intent

import (
	"errors"
	"fmt"
)

// ErrCollaboratorUnavailable is matched (via errors.Is) by every error caused
// by a provider failing, timing out or not being configured.
var ErrCollaboratorUnavailable = errors.New("intent: collaborator unavailable")

// ErrNotConfigured is the cause recorded when no provider was injected for a
// kind.
var ErrNotConfigured = errors.New("no provider configured")

// Provider kinds reported in CollaboratorError.Kind.
const (
	KindJoke      = "joke"
	KindQuote     = "quote"
	KindSummary   = "summary"
	KindSentiment = "sentiment"
)

// CollaboratorError reports that the provider of one kind could not serve a
// request.
type CollaboratorError struct {
	Kind string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("intent: %s service unavailable: %v", e.Kind, e.Err)
}

// Unwrap lets errors.Is match both ErrCollaboratorUnavailable and the
// underlying cause.
func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrCollaboratorUnavailable, e.Err}
}
