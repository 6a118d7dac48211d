// Command infobot is the main entry point for the InfoBot chat assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/infobot/internal/app"
	"github.com/MrWong99/infobot/internal/config"
	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/pkg/provider/joke"
	jokebuiltin "github.com/MrWong99/infobot/pkg/provider/joke/builtin"
	"github.com/MrWong99/infobot/pkg/provider/joke/jokeapi"
	"github.com/MrWong99/infobot/pkg/provider/quote"
	quotebuiltin "github.com/MrWong99/infobot/pkg/provider/quote/builtin"
	"github.com/MrWong99/infobot/pkg/provider/quote/zenquotes"
	"github.com/MrWong99/infobot/pkg/provider/sentiment"
	"github.com/MrWong99/infobot/pkg/provider/sentiment/anyllm"
	"github.com/MrWong99/infobot/pkg/provider/sentiment/lexicon"
	oaisentiment "github.com/MrWong99/infobot/pkg/provider/sentiment/openai"
	"github.com/MrWong99/infobot/pkg/provider/summary"
	summarybuiltin "github.com/MrWong99/infobot/pkg/provider/summary/builtin"
	"github.com/MrWong99/infobot/pkg/provider/summary/wikipedia"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	watch := flag.Bool("watch", true, "reload log level and bot name when the config file changes")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "infobot: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "infobot: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(cfg.Server.LogLevel.Level())
	slog.SetDefault(newLogger(level))

	slog.Info("infobot starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	tel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "infobot",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics, err := observe.NewMetrics(tel.MeterProvider)
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg, cfg.Server.ProviderTimeout)

	providers, err := app.BuildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	printStartupSummary(cfg)

	opts := []app.Option{
		app.WithMetrics(metrics),
		app.WithMetricsHandler(tel.MetricsHandler()),
		app.WithLogLevel(level),
	}
	if *watch {
		opts = append(opts, app.WithConfigWatch(*configPath, config.DefaultWatchInterval))
	}
	application, err := app.New(cfg, providers, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	exit := 0
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		exit = 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		exit = 1
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return exit
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// anyllmSentiment lists the any-llm backends usable as sentiment analyzers.
// ollama is registered separately because it takes no API key.
var anyllmSentiment = []string{
	"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// timeout bounds each HTTP request made by remote providers.
func registerBuiltinProviders(reg *config.Registry, timeout time.Duration) {
	// ── Jokes ─────────────────────────────────────────────────────────────────

	reg.RegisterJoke("builtin", func(config.ProviderEntry) (joke.Provider, error) {
		return jokebuiltin.New(), nil
	})

	reg.RegisterJoke("jokeapi", func(entry config.ProviderEntry) (joke.Provider, error) {
		opts := []jokeapi.Option{
			jokeapi.WithTimeout(timeout),
			jokeapi.WithSafeMode(entry.OptBool("safe_mode", true)),
		}
		if c := entry.OptString("category"); c != "" {
			opts = append(opts, jokeapi.WithCategory(c))
		}
		return jokeapi.New(entry.BaseURL, opts...)
	})

	// ── Quotes ────────────────────────────────────────────────────────────────

	reg.RegisterQuote("builtin", func(config.ProviderEntry) (quote.Provider, error) {
		return quotebuiltin.New(), nil
	})

	reg.RegisterQuote("zenquotes", func(entry config.ProviderEntry) (quote.Provider, error) {
		return zenquotes.New(entry.BaseURL, zenquotes.WithTimeout(timeout)), nil
	})

	// ── Summaries ─────────────────────────────────────────────────────────────

	reg.RegisterSummary("builtin", func(config.ProviderEntry) (summary.Provider, error) {
		return summarybuiltin.New(), nil
	})

	reg.RegisterSummary("wikipedia", func(entry config.ProviderEntry) (summary.Provider, error) {
		opts := []wikipedia.Option{wikipedia.WithTimeout(timeout)}
		if lang := entry.OptString("language"); lang != "" {
			opts = append(opts, wikipedia.WithLanguage(lang))
		}
		if ua := entry.OptString("user_agent"); ua != "" {
			opts = append(opts, wikipedia.WithUserAgent(ua))
		}
		if entry.BaseURL != "" {
			opts = append(opts, wikipedia.WithBaseURL(entry.BaseURL))
		}
		return wikipedia.New(opts...)
	})

	// ── Sentiment ─────────────────────────────────────────────────────────────

	reg.RegisterSentiment("lexicon", func(config.ProviderEntry) (sentiment.Analyzer, error) {
		return lexicon.New(), nil
	})

	reg.RegisterSentiment("openai", func(entry config.ProviderEntry) (sentiment.Analyzer, error) {
		opts := []oaisentiment.Option{oaisentiment.WithTimeout(timeout)}
		if entry.BaseURL != "" {
			opts = append(opts, oaisentiment.WithBaseURL(entry.BaseURL))
		}
		if org := entry.OptString("organization"); org != "" {
			opts = append(opts, oaisentiment.WithOrganization(org))
		}
		return oaisentiment.New(entry.APIKey, entry.Model, opts...)
	})

	for _, providerName := range anyllmSentiment {
		reg.RegisterSentiment(providerName, func(entry config.ProviderEntry) (sentiment.Analyzer, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterSentiment("ollama", func(entry config.ProviderEntry) (sentiment.Analyzer, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	for _, kind := range []string{"joke", "quote", "summary", "sentiment"} {
		slog.Debug("registered providers", "kind", kind, "names", reg.Names(kind))
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	w := os.Stderr
	fmt.Fprintln(w, "╔═══════════════════════════════════════╗")
	fmt.Fprintln(w, "║         InfoBot - startup summary     ║")
	fmt.Fprintln(w, "╠═══════════════════════════════════════╣")
	printProvider("Joke", cfg.Providers.Joke, len(cfg.Fallbacks.Joke))
	printProvider("Quote", cfg.Providers.Quote, len(cfg.Fallbacks.Quote))
	printProvider("Summary", cfg.Providers.Summary, len(cfg.Fallbacks.Summary))
	printProvider("Sentiment", cfg.Providers.Sentiment, len(cfg.Fallbacks.Sentiment))
	printRow("Bot name", cfg.Bot.Name)
	printRow("Terminal", enabled(cfg.Bot.Terminal))
	printRow("Discord", enabled(cfg.Discord.Token != ""))
	if cfg.Server.ListenAddr != "" {
		printRow("Listen addr", cfg.Server.ListenAddr)
	} else {
		printRow("Listen addr", "(disabled)")
	}
	fmt.Fprintln(w, "╚═══════════════════════════════════════╝")
}

func printProvider(kind string, entry config.ProviderEntry, fallbacks int) {
	value := entry.Name
	switch {
	case value == "":
		value = "(not configured)"
	case entry.Model != "":
		value += " / " + entry.Model
	}
	if fallbacks > 0 {
		value += fmt.Sprintf(" +%d", fallbacks)
	}
	printRow(kind, value)
}

func printRow(label, value string) {
	if r := []rune(value); len(r) > 19 {
		value = string(r[:18]) + "…"
	}
	fmt.Fprintf(os.Stderr, "║  %-14s  : %-19s ║\n", label, value)
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "(disabled)"
}

// ── Logger ─────────────────────────────────────────────────────────────────────

// newLogger writes text logs to stderr, leaving stdout to the terminal
// surface. The level is read from lv on every record.
func newLogger(lv *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}
