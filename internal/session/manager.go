package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/internal/transcript"
)

// Surface names used as session key prefixes.
const (
	SurfaceTerminal  = "terminal"
	SurfaceWebSocket = "ws"
	SurfaceDiscord   = "discord"
)

// TerminalKey is the key of the single REPL session.
const TerminalKey = SurfaceTerminal

// NewWebSocketKey returns a fresh key for one WebSocket connection.
func NewWebSocketKey() string { return SurfaceWebSocket + ":" + uuid.NewString() }

// DiscordKey returns the key of the session bound to a Discord channel.
func DiscordKey(channelID string) string { return SurfaceDiscord + ":" + channelID }

// Manager creates and tracks sessions by key. It is safe for concurrent use.
type Manager struct {
	router  Responder
	metrics *observe.Metrics
	now     func() time.Time

	mu       sync.Mutex
	botName  string
	sessions map[string]*Session
}

// Option configures a [Manager].
type Option func(*Manager)

// WithMetrics records the active session gauge on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithBotName sets the initial display name. Default "InfoBot".
func WithBotName(name string) Option {
	return func(mgr *Manager) {
		if name != "" {
			mgr.botName = name
		}
	}
}

// WithClock sets the time source for session and transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(mgr *Manager) {
		if now != nil {
			mgr.now = now
		}
	}
}

// NewManager returns a Manager whose sessions answer through router.
func NewManager(router Responder, opts ...Option) *Manager {
	m := &Manager{
		router:   router,
		now:      time.Now,
		botName:  "InfoBot",
		sessions: make(map[string]*Session),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open returns the session for key, creating it with an empty transcript if
// it does not exist yet.
func (m *Manager) Open(ctx context.Context, key string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return s
	}
	s := &Session{
		key:        key,
		openedAt:   m.now(),
		router:     m.router,
		botName:    m.BotName,
		transcript: transcript.New(transcript.WithClock(m.now)),
	}
	m.sessions[key] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionOpened(ctx, s.Surface())
	}
	observe.Logger(ctx).Info("session opened", "session", key, "id", s.ID())
	return s
}

// Get returns the session for key, if open.
func (m *Manager) Get(key string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Close discards the session for key together with its transcript. It
// reports whether a session was open.
func (m *Manager) Close(ctx context.Context, key string) bool {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if !ok {
		return false
	}

	if m.metrics != nil {
		m.metrics.SessionClosed(ctx, s.Surface())
	}
	observe.Logger(ctx).Info("session closed",
		"session", key,
		"id", s.ID(),
		"entries", s.Transcript().Len(),
		"duration", m.now().Sub(s.openedAt),
	)
	return true
}

// CloseAll closes every open session.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, s := range m.Sessions() {
		m.Close(ctx, s.Key())
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sessions returns the open sessions ordered by key.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()
	slices.SortFunc(out, func(a, b *Session) int { return strings.Compare(a.key, b.key) })
	return out
}

// BotName returns the current display name.
func (m *Manager) BotName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.botName
}

// SetBotName changes the display name of all sessions, open or future.
// Empty names are ignored.
func (m *Manager) SetBotName(name string) {
	if name == "" {
		return
	}
	m.mu.Lock()
	old := m.botName
	m.botName = name
	m.mu.Unlock()
	slog.Info("bot name changed", "old", old, "new", name)
}
