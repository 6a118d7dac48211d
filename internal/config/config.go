// Package config provides the configuration schema, loader, and provider registry
// for the InfoBot chat assistant.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for InfoBot.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its slog level. Unknown and empty levels map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults applied by [LoadFromReader] to zero-valued fields.
const (
	DefaultBotName         = "InfoBot"
	DefaultProviderTimeout = 10 * time.Second
	DefaultMaxFailures     = 5
	DefaultResetTimeout    = 30 * time.Second
)

// Config is the root configuration structure for InfoBot.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Bot        BotConfig        `yaml:"bot"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Fallbacks  FallbacksConfig  `yaml:"fallbacks"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Discord    DiscordConfig    `yaml:"discord"`
}

// ServerConfig holds network, logging and timeout settings.
type ServerConfig struct {
	// ListenAddr is the TCP address of the HTTP surface (e.g., ":8080").
	// Empty disables the HTTP surface.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ProviderTimeout bounds every outbound provider call.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

// BotConfig holds presentation settings shared by all surfaces.
type BotConfig struct {
	// Name is the display name used as the reply prefix.
	Name string `yaml:"name"`

	// Terminal enables the stdin/stdout REPL surface.
	Terminal bool `yaml:"terminal"`
}

// ProvidersConfig declares which provider implementation serves each intent
// that needs an external collaborator. Each field selects a named provider
// registered in the [Registry].
type ProvidersConfig struct {
	Joke      ProviderEntry `yaml:"joke"`
	Quote     ProviderEntry `yaml:"quote"`
	Summary   ProviderEntry `yaml:"summary"`
	Sentiment ProviderEntry `yaml:"sentiment"`
}

// FallbacksConfig lists, per kind, the providers tried in order after the
// primary one in [ProvidersConfig] fails.
type FallbacksConfig struct {
	Joke      []ProviderEntry `yaml:"joke"`
	Quote     []ProviderEntry `yaml:"quote"`
	Summary   []ProviderEntry `yaml:"summary"`
	Sentiment []ProviderEntry `yaml:"sentiment"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "jokeapi", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model for language-model backed analyzers.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// OptString extracts a string value from e.Options.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func (e ProviderEntry) OptString(key string) string {
	s, _ := e.Options[key].(string)
	return s
}

// OptBool extracts a boolean value from e.Options, returning def when the
// key is absent or not a boolean.
func (e ProviderEntry) OptBool(key string, def bool) bool {
	b, ok := e.Options[key].(bool)
	if !ok {
		return def
	}
	return b
}

// ResilienceConfig tunes the circuit breakers wrapped around every provider.
type ResilienceConfig struct {
	// MaxFailures is the number of consecutive failures that opens a breaker.
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long an open breaker waits before probing again.
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// DiscordConfig enables the Discord surface when Token is set.
type DiscordConfig struct {
	Token string `yaml:"token"`

	// ChannelIDs restricts the bot to these channels. Empty means all
	// channels the bot can read.
	ChannelIDs []string `yaml:"channel_ids"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Server.ProviderTimeout == 0 {
		c.Server.ProviderTimeout = DefaultProviderTimeout
	}
	if c.Bot.Name == "" {
		c.Bot.Name = DefaultBotName
	}
	if c.Resilience.MaxFailures == 0 {
		c.Resilience.MaxFailures = DefaultMaxFailures
	}
	if c.Resilience.ResetTimeout == 0 {
		c.Resilience.ResetTimeout = DefaultResetTimeout
	}
}
