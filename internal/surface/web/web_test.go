package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/infobot/internal/health"
	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/session"
	"github.com/MrWong99/infobot/internal/surface/web"
	jokemock "github.com/MrWong99/infobot/pkg/provider/joke/mock"
)

func newServer(t *testing.T, opts ...web.Option) (*httptest.Server, *session.Manager) {
	t.Helper()
	router := intent.NewRouter(intent.Deps{Jokes: &jokemock.Provider{JokeResult: "Git happens."}})
	mgr := session.NewManager(router, session.WithBotName("InfoBot"))
	srv := httptest.NewServer(web.New(mgr, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv, mgr
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) web.Outbound {
	t.Helper()
	var m web.Outbound
	if err := wsjson.Read(ctx, conn, &m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func TestWebSocket_Chat(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv, mgr := newServer(t)
	conn := dial(t, ctx, srv)

	banner := read(t, ctx, conn)
	if banner.Type != web.TypeBanner || banner.Name != "InfoBot" || banner.Session == "" {
		t.Errorf("banner = %+v", banner)
	}

	exchanges := []struct {
		send, reply, intent string
	}{
		{"tell me a joke", "Git happens.", "joke"},
		{"help", "Available commands: joke, quote, fact, time, sentiment, help", "help"},
		{"quote", "Sorry, I couldn't reach the quote service right now.", "quote"},
	}
	for i, ex := range exchanges {
		if err := wsjson.Write(ctx, conn, web.Inbound{Text: ex.send}); err != nil {
			t.Fatalf("write: %v", err)
		}
		user := read(t, ctx, conn)
		bot := read(t, ctx, conn)

		if user.Type != web.TypeEntry || user.Speaker != "user" || user.Text != ex.send || user.Ordinal != 2*i+1 {
			t.Errorf("user frame %d = %+v", i, user)
		}
		if bot.Speaker != "bot" || bot.Text != ex.reply || bot.Ordinal != 2*i+2 || bot.Intent != ex.intent {
			t.Errorf("bot frame %d = %+v", i, bot)
		}
		if bot.At.IsZero() {
			t.Errorf("bot frame %d has no timestamp", i)
		}
	}

	if mgr.Len() != 1 {
		t.Errorf("open sessions = %d, want 1", mgr.Len())
	}
	conn.Close(websocket.StatusNormalClosure, "bye")

	deadline := time.Now().Add(2 * time.Second)
	for mgr.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if mgr.Len() != 0 {
		t.Errorf("session not closed after disconnect, open = %d", mgr.Len())
	}
}

func TestWebSocket_SessionPerConnection(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv, mgr := newServer(t)

	a := read(t, ctx, dial(t, ctx, srv))
	b := read(t, ctx, dial(t, ctx, srv))
	if a.Session == b.Session {
		t.Error("connections should get distinct sessions")
	}
	if mgr.Len() != 2 {
		t.Errorf("open sessions = %d, want 2", mgr.Len())
	}
}

func TestWebSocket_OversizedMessage(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv, mgr := newServer(t)
	conn := dial(t, ctx, srv)
	read(t, ctx, conn)

	if err := wsjson.Write(ctx, conn, web.Inbound{Text: strings.Repeat("a", web.MaxTextBytes+1)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if m := read(t, ctx, conn); m.Type != web.TypeError {
		t.Errorf("frame = %+v, want error", m)
	}
	for _, s := range mgr.Sessions() {
		if s.Transcript().Len() != 0 {
			t.Error("oversized message must not reach the transcript")
		}
	}
}

func TestCommandsAPI(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"joke", "quote", "fact", "time", "sentiment", "help"}},
		{"?prefix=j", []string{"joke"}},
		{"?prefix=S", []string{"sentiment"}},
		{"?prefix=zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/commands" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var body struct {
				Commands []string `json:"commands"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(body.Commands, tt.want) {
				t.Errorf("commands = %v, want %v", body.Commands, tt.want)
			}
		})
	}
}

func TestOptionalRoutes(t *testing.T) {
	t.Parallel()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("infobot_intents_total 1\n"))
	})
	withAll, _ := newServer(t,
		web.WithHealth(health.New(health.Configured("joke", true))),
		web.WithMetricsHandler(metrics),
	)
	bare, _ := newServer(t)

	tests := []struct {
		srv  *httptest.Server
		path string
		want int
	}{
		{withAll, "/healthz", http.StatusOK},
		{withAll, "/readyz", http.StatusOK},
		{withAll, "/metrics", http.StatusOK},
		{bare, "/healthz", http.StatusNotFound},
		{bare, "/metrics", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(tt.srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()
	router := intent.NewRouter(intent.Deps{})
	s := web.New(session.NewManager(router))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	// Not mounted without WithHealth; any response proves the server is up.
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
