package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/MrWong99/infobot/internal/app"
	"github.com/MrWong99/infobot/internal/config"
	"github.com/MrWong99/infobot/internal/observe"
	jokemock "github.com/MrWong99/infobot/pkg/provider/joke/mock"
)

// testConfig returns a config with only the terminal surface enabled.
func testConfig() *config.Config {
	cfg := &config.Config{
		Bot: config.BotConfig{Name: "InfoBot", Terminal: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(metric.NewMeterProvider())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRun_TerminalQuitStopsApp(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("tell me a joke\nbye\n")
	var out bytes.Buffer
	a, err := app.New(testConfig(),
		&app.Providers{Jokes: &jokemock.Provider{JokeResult: "Git happens."}},
		app.WithTerminalIO(in, &out),
		app.WithMetrics(testMetrics(t)),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the user quit")
	}

	if !strings.Contains(out.String(), "InfoBot: Git happens.") {
		t.Errorf("output missing joke reply:\n%s", out.String())
	}
	if a.Sessions().Len() != 0 {
		t.Errorf("terminal session still open after quit")
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bot.Terminal = false
	cfg.Server.ListenAddr = "127.0.0.1:0"

	a, err := app.New(cfg, nil, app.WithMetrics(testMetrics(t)))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_WithDiscordBot(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Discord.Token = "test-token"
	a, err := app.New(cfg, nil, app.WithTerminalIO(strings.NewReader(""), io.Discard), app.WithMetrics(testMetrics(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// The bot is constructed but never connected; Shutdown must still close it.
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestReload_AppliesHotSettings(t *testing.T) {
	t.Parallel()

	lv := new(slog.LevelVar)
	a, err := app.New(testConfig(), nil, app.WithLogLevel(lv), app.WithMetrics(testMetrics(t)))
	if err != nil {
		t.Fatal(err)
	}

	old := testConfig()
	updated := testConfig()
	updated.Server.LogLevel = config.LogDebug
	updated.Bot.Name = "Oracle"
	updated.Server.ListenAddr = ":9999"

	a.Reload(old, updated)

	if lv.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lv.Level())
	}
	if got := a.Sessions().BotName(); got != "Oracle" {
		t.Errorf("bot name = %q, want Oracle", got)
	}
}

func TestNew_ConfigWatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "infobot.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("bot:\n  name: InfoBot\n  terminal: true\n")

	a, err := app.New(testConfig(), nil,
		app.WithConfigWatch(path, 10*time.Millisecond),
		app.WithMetrics(testMetrics(t)),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	// Ensure a distinct mtime on filesystems with coarse timestamps.
	time.Sleep(20 * time.Millisecond)
	write("bot:\n  name: Oracle\n  terminal: true\n")
	future := time.Now().Add(2 * time.Second)
	_ = os.Chtimes(path, future, future)

	deadline := time.Now().Add(3 * time.Second)
	for a.Sessions().BotName() != "Oracle" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := a.Sessions().BotName(); got != "Oracle" {
		t.Errorf("bot name = %q after edit, want Oracle", got)
	}
}

func TestNew_ConfigWatchMissingFile(t *testing.T) {
	t.Parallel()

	_, err := app.New(testConfig(), nil, app.WithConfigWatch(filepath.Join(t.TempDir(), "nope.yaml"), 0))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(), nil, app.WithMetrics(testMetrics(t)))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown = %v", err)
	}
}
