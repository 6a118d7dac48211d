// Package web serves the HTTP surface: a WebSocket chat endpoint, the
// command completion API, health probes and Prometheus metrics.
//
// Routes:
//
//	GET /ws                     WebSocket chat, one session per connection
//	GET /api/commands?prefix=   JSON list of matching commands
//	GET /healthz, GET /readyz   liveness and readiness
//	GET /metrics                Prometheus exposition
//
// On /ws the server first sends a banner message, then answers every client
// frame {"text": "..."} with two entry messages: the stored user entry and
// the stored bot entry.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/infobot/internal/completion"
	"github.com/MrWong99/infobot/internal/health"
	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/internal/session"
	"github.com/MrWong99/infobot/internal/transcript"
)

// Message types sent to WebSocket clients.
const (
	TypeBanner = "banner"
	TypeEntry  = "entry"
	TypeError  = "error"
)

// MaxTextBytes bounds a single client message.
const MaxTextBytes = 4096

const shutdownTimeout = 10 * time.Second

// Inbound is a client frame.
type Inbound struct {
	Text string `json:"text"`
}

// Outbound is a server frame.
type Outbound struct {
	Type    string    `json:"type"`
	Session string    `json:"session,omitempty"`
	Ordinal int       `json:"ordinal,omitempty"`
	Speaker string    `json:"speaker,omitempty"`
	Name    string    `json:"name,omitempty"`
	Text    string    `json:"text"`
	Intent  string    `json:"intent,omitempty"`
	At      time.Time `json:"at,omitzero"`
}

func entryMessage(name string, e transcript.Entry) Outbound {
	return Outbound{
		Type:    TypeEntry,
		Ordinal: e.Ordinal,
		Speaker: e.Speaker.String(),
		Name:    name,
		Text:    e.Text,
		At:      e.At,
	}
}

// Server is the HTTP surface.
type Server struct {
	sessions       *session.Manager
	completer      *completion.Completer
	health         *health.Handler
	metrics        *observe.Metrics
	metricsHandler http.Handler
	originPatterns []string

	handler http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithCompleter replaces the default completer over [intent.Commands].
func WithCompleter(c *completion.Completer) Option {
	return func(s *Server) { s.completer = c }
}

// WithHealth mounts /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics records HTTP metrics through the observe middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithOriginPatterns allows cross-origin WebSocket connections from hosts
// matching the patterns. By default only same-origin requests are accepted.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.originPatterns = patterns }
}

// New builds the surface around sessions.
func New(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		completer: completion.New(intent.Commands()),
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/commands", s.handleCommands)
	if s.health != nil {
		s.health.Register(mux)
	}
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	metrics := s.metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	s.handler = observe.Middleware(metrics)(mux)
	return s
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Open WebSocket sessions are closed by their handlers once the
// base context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen %q: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	slog.Info("http surface listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(struct {
		Commands []string `json:"commands"`
	}{Commands: s.completer.Complete(prefix)})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		// Accept has already written the HTTP error.
		observe.Logger(r.Context()).Debug("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()
	// JSON escaping can expand text up to six-fold.
	conn.SetReadLimit(6*MaxTextBytes + 64)

	ctx := r.Context()
	sess := s.sessions.Open(ctx, session.NewWebSocketKey())
	defer s.sessions.Close(context.WithoutCancel(ctx), sess.Key())
	log := observe.Logger(ctx).With("session", sess.Key())

	banner := Outbound{
		Type:    TypeBanner,
		Session: sess.ID(),
		Name:    sess.BotName(),
		Text:    "Hello! Type 'help' to see what I can do.",
	}
	if err := wsjson.Write(ctx, conn, banner); err != nil {
		log.Debug("websocket write failed", "err", err)
		return
	}

	for {
		var in Inbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				log.Debug("websocket read ended", "err", err)
			}
			return
		}
		if len(in.Text) > MaxTextBytes {
			msg := Outbound{Type: TypeError, Text: fmt.Sprintf("message exceeds %d bytes", MaxTextBytes)}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return
			}
			continue
		}

		user, bot, res := sess.Submit(ctx, in.Text)
		name := sess.BotName()
		userMsg := entryMessage(name, user)
		botMsg := entryMessage(name, bot)
		botMsg.Intent = res.Intent.String()
		for _, m := range []Outbound{userMsg, botMsg} {
			if err := wsjson.Write(ctx, conn, m); err != nil {
				log.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
