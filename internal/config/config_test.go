package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/infobot/internal/config"
	"github.com/MrWong99/infobot/pkg/provider/joke"
	jokemock "github.com/MrWong99/infobot/pkg/provider/joke/mock"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/summary"
)

const fullYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
  provider_timeout: 3s
bot:
  name: Oracle
  terminal: true
providers:
  joke:
    name: jokeapi
    options:
      category: Programming
      safe_mode: false
  quote:
    name: zenquotes
  summary:
    name: wikipedia
    options:
      language: de
  sentiment:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
fallbacks:
  joke:
    - name: builtin
  sentiment:
    - name: lexicon
resilience:
  max_failures: 3
  reset_timeout: 1m
discord:
  token: abc
  channel_ids: ["123", "456"]
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Server.ProviderTimeout != 3*time.Second {
		t.Errorf("provider_timeout: got %s, want 3s", cfg.Server.ProviderTimeout)
	}
	if cfg.Bot.Name != "Oracle" || !cfg.Bot.Terminal {
		t.Errorf("bot: got %+v", cfg.Bot)
	}
	if got := cfg.Providers.Joke.OptString("category"); got != "Programming" {
		t.Errorf("joke category: got %q", got)
	}
	if cfg.Providers.Joke.OptBool("safe_mode", true) {
		t.Error("joke safe_mode: got true, want false")
	}
	if cfg.Providers.Sentiment.APIKey != "sk-test" || cfg.Providers.Sentiment.Model != "gpt-4o-mini" {
		t.Errorf("sentiment entry: got %+v", cfg.Providers.Sentiment)
	}
	if len(cfg.Fallbacks.Joke) != 1 || cfg.Fallbacks.Joke[0].Name != "builtin" {
		t.Errorf("joke fallbacks: got %+v", cfg.Fallbacks.Joke)
	}
	if cfg.Resilience.MaxFailures != 3 || cfg.Resilience.ResetTimeout != time.Minute {
		t.Errorf("resilience: got %+v", cfg.Resilience)
	}
	if !slices.Equal(cfg.Discord.ChannelIDs, []string{"123", "456"}) {
		t.Errorf("channel_ids: got %v", cfg.Discord.ChannelIDs)
	}
}

func TestLoadFromReader_EmptyAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config should be valid, got: %v", err)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level: got %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Server.ProviderTimeout != config.DefaultProviderTimeout {
		t.Errorf("provider_timeout: got %s", cfg.Server.ProviderTimeout)
	}
	if cfg.Bot.Name != config.DefaultBotName {
		t.Errorf("bot.name: got %q", cfg.Bot.Name)
	}
	if cfg.Resilience.MaxFailures != config.DefaultMaxFailures {
		t.Errorf("max_failures: got %d", cfg.Resilience.MaxFailures)
	}
	if cfg.Resilience.ResetTimeout != config.DefaultResetTimeout {
		t.Errorf("reset_timeout: got %s", cfg.Resilience.ResetTimeout)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("server:\n  colour: blue\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bot.Name != "Oracle" {
		t.Errorf("bot.name: got %q", cfg.Bot.Name)
	}
}

func TestLogLevel_Level(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   config.LogLevel
		want string
	}{
		{config.LogDebug, "DEBUG"},
		{config.LogInfo, "INFO"},
		{config.LogWarn, "WARN"},
		{config.LogError, "ERROR"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := tt.in.Level().String(); got != tt.want {
			t.Errorf("%q.Level() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestProviderEntry_Options(t *testing.T) {
	t.Parallel()
	e := config.ProviderEntry{Options: map[string]any{"s": "x", "n": 3, "b": true}}
	if e.OptString("s") != "x" {
		t.Error("OptString(s) mismatch")
	}
	if e.OptString("n") != "" {
		t.Error("OptString on a non-string should be empty")
	}
	if e.OptString("missing") != "" {
		t.Error("OptString on a missing key should be empty")
	}
	if !e.OptBool("b", false) {
		t.Error("OptBool(b) should be true")
	}
	if !e.OptBool("s", true) {
		t.Error("OptBool on a non-bool should return the default")
	}
	var empty config.ProviderEntry
	if empty.OptString("s") != "" || empty.OptBool("b", true) != true {
		t.Error("nil Options should behave like missing keys")
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_Unknown(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	entry := config.ProviderEntry{Name: "nope"}

	tests := []struct {
		kind   string
		create func() error
	}{
		{"joke", func() error { _, err := reg.CreateJoke(entry); return err }},
		{"quote", func() error { _, err := reg.CreateQuote(entry); return err }},
		{"summary", func() error { _, err := reg.CreateSummary(entry); return err }},
		{"sentiment", func() error { _, err := reg.CreateSentiment(entry); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			err := tt.create()
			if !errors.Is(err, config.ErrProviderNotRegistered) {
				t.Fatalf("want ErrProviderNotRegistered, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.kind+`/"nope"`) {
				t.Errorf("error should name kind and provider, got %v", err)
			}
		})
	}
}

func TestRegistry_Registered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	want := &jokemock.Provider{JokeResult: "ha"}
	var gotEntry config.ProviderEntry
	reg.RegisterJoke("stub", func(e config.ProviderEntry) (joke.Provider, error) {
		gotEntry = e
		return want, nil
	})
	reg.RegisterQuote("stub", func(config.ProviderEntry) (quote.Provider, error) { return stubQuote{}, nil })
	reg.RegisterSummary("stub", func(config.ProviderEntry) (summary.Provider, error) { return stubSummary{}, nil })
	reg.RegisterSentiment("stub", func(config.ProviderEntry) (sentiment.Analyzer, error) { return stubSentiment{}, nil })

	p, err := reg.CreateJoke(config.ProviderEntry{Name: "stub", BaseURL: "http://x"})
	if err != nil {
		t.Fatalf("CreateJoke: %v", err)
	}
	if p != want {
		t.Error("CreateJoke returned a different provider")
	}
	if gotEntry.BaseURL != "http://x" {
		t.Errorf("factory got entry %+v", gotEntry)
	}
	if _, err := reg.CreateQuote(config.ProviderEntry{Name: "stub"}); err != nil {
		t.Errorf("CreateQuote: %v", err)
	}
	if _, err := reg.CreateSummary(config.ProviderEntry{Name: "stub"}); err != nil {
		t.Errorf("CreateSummary: %v", err)
	}
	if _, err := reg.CreateSentiment(config.ProviderEntry{Name: "stub"}); err != nil {
		t.Errorf("CreateSentiment: %v", err)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	boom := errors.New("boom")
	reg.RegisterSentiment("broken", func(config.ProviderEntry) (sentiment.Analyzer, error) { return nil, boom })

	_, err := reg.CreateSentiment(config.ProviderEntry{Name: "broken"})
	if !errors.Is(err, boom) {
		t.Fatalf("want factory error, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	for _, name := range []string{"zenquotes", "builtin"} {
		reg.RegisterQuote(name, func(config.ProviderEntry) (quote.Provider, error) { return stubQuote{}, nil })
	}
	if got := reg.Names("quote"); !slices.Equal(got, []string{"builtin", "zenquotes"}) {
		t.Errorf("Names(quote) = %v", got)
	}
	if got := reg.Names("joke"); len(got) != 0 {
		t.Errorf("Names(joke) = %v, want empty", got)
	}
	if got := reg.Names("llm"); got != nil {
		t.Errorf("Names(llm) = %v, want nil", got)
	}
}

type stubQuote struct{}

func (stubQuote) Quote(context.Context) (string, error) { return "q", nil }

type stubSummary struct{}

func (stubSummary) RandomSummary(context.Context) (string, error) { return "s", nil }

type stubSentiment struct{}

func (stubSentiment) Polarity(context.Context, string) (float64, error) { return 0, nil }
