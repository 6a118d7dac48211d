package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"joke":      {"builtin", "jokeapi"},
	"quote":     {"builtin", "zenquotes"},
	"summary":   {"wikipedia", "builtin"},
	"sentiment": {"lexicon", "openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. An empty document yields the default configuration.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ProviderTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.provider_timeout %s must not be negative", cfg.Server.ProviderTimeout))
	}
	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures %d must not be negative", cfg.Resilience.MaxFailures))
	}
	if cfg.Resilience.ResetTimeout < 0 {
		errs = append(errs, fmt.Errorf("resilience.reset_timeout %s must not be negative", cfg.Resilience.ResetTimeout))
	}

	kinds := []struct {
		kind      string
		primary   ProviderEntry
		fallbacks []ProviderEntry
	}{
		{"joke", cfg.Providers.Joke, cfg.Fallbacks.Joke},
		{"quote", cfg.Providers.Quote, cfg.Fallbacks.Quote},
		{"summary", cfg.Providers.Summary, cfg.Fallbacks.Summary},
		{"sentiment", cfg.Providers.Sentiment, cfg.Fallbacks.Sentiment},
	}
	for _, k := range kinds {
		validateProviderName(k.kind, k.primary.Name)
		if k.primary.Name == "" {
			if len(k.fallbacks) > 0 {
				errs = append(errs, fmt.Errorf("fallbacks.%s is set but providers.%s.name is empty", k.kind, k.kind))
			} else {
				slog.Warn("no provider configured; the intent will report the service as unavailable", "kind", k.kind)
			}
		}
		for i, fb := range k.fallbacks {
			if fb.Name == "" {
				errs = append(errs, fmt.Errorf("fallbacks.%s[%d].name is required", k.kind, i))
				continue
			}
			validateProviderName(k.kind, fb.Name)
		}
	}

	if cfg.Discord.Token == "" && len(cfg.Discord.ChannelIDs) > 0 {
		slog.Warn("discord.channel_ids is set but discord.token is empty; the Discord surface stays disabled")
	}
	for i, id := range cfg.Discord.ChannelIDs {
		if id == "" {
			errs = append(errs, fmt.Errorf("discord.channel_ids[%d] is empty", i))
		}
	}

	if cfg.Server.ListenAddr == "" && !cfg.Bot.Terminal && cfg.Discord.Token == "" {
		slog.Warn("no surface enabled; set server.listen_addr, bot.terminal or discord.token")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
