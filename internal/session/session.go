// Package session ties a transcript to the intent router for one
// conversation on one surface.
//
// A [Session] serialises submissions: the user entry, the routed reply and
// the bot entry are appended under one lock, so a transcript always reads
// user, bot, user, bot. Sessions are created and tracked by a [Manager],
// keyed by the surface that owns them ("terminal", "ws:<uuid>",
// "discord:<channel>").
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/internal/transcript"
)

// Responder produces the reply for one utterance. [*intent.Router]
// implements it.
type Responder interface {
	Respond(ctx context.Context, input string) intent.Result
}

var _ Responder = (*intent.Router)(nil)

// Session is one conversation: a transcript plus the router that answers it.
type Session struct {
	key      string
	openedAt time.Time
	router   Responder
	botName  func() string

	mu         sync.Mutex
	transcript *transcript.Transcript
}

// Key returns the manager key of the session.
func (s *Session) Key() string { return s.key }

// ID returns the session's unique ID, shared with its transcript.
func (s *Session) ID() string { return s.transcript.ID() }

// Surface returns the part of the key before the first colon.
func (s *Session) Surface() string { return SurfaceOf(s.key) }

// OpenedAt returns when the session was opened.
func (s *Session) OpenedAt() time.Time { return s.openedAt }

// BotName returns the display name surfaces should prefix replies with.
func (s *Session) BotName() string { return s.botName() }

// Transcript returns the session's log for reading.
func (s *Session) Transcript() *transcript.Transcript { return s.transcript }

// Submit appends text as a user entry, routes it and appends the reply as a
// bot entry. A failed route is rendered as an apology naming the service that
// could not be reached; the cause stays available in res.Err.
func (s *Session) Submit(ctx context.Context, text string) (user, bot transcript.Entry, res intent.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user = s.transcript.AppendUser(text)
	res = s.router.Respond(ctx, text)

	reply := res.Text
	if !res.OK() {
		reply = FailureReply(res.Err)
		observe.Logger(ctx).Warn("reply degraded",
			"session", s.key,
			"intent", res.Intent.String(),
			"err", res.Err,
		)
	}
	bot = s.transcript.AppendBot(reply)
	return user, bot, res
}

// FailureReply renders err as the text shown to the user.
func FailureReply(err error) string {
	kind := "requested"
	var ce *intent.CollaboratorError
	if errors.As(err, &ce) {
		kind = ce.Kind
	}
	return fmt.Sprintf("Sorry, I couldn't reach the %s service right now.", kind)
}

// SurfaceOf returns the surface name encoded in a session key.
func SurfaceOf(key string) string {
	surface, _, _ := strings.Cut(key, ":")
	return surface
}
