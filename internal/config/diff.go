package config

import "reflect"

// ConfigDiff describes what changed between two configs.
//
// LogLevel and BotName can be applied to a running process. Every other
// changed section is listed in RestartRequired so the caller can tell the
// operator the edit takes effect on the next start.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	BotNameChanged bool
	NewBotName     string

	// RestartRequired names the top-level sections (e.g. "providers",
	// "server.listen_addr") whose changes are ignored until restart.
	RestartRequired []string
}

// Changed reports whether d carries any difference at all.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.BotNameChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Bot.Name != new.Bot.Name {
		d.BotNameChanged = true
		d.NewBotName = new.Bot.Name
	}

	static := []struct {
		section  string
		old, new any
	}{
		{"server.listen_addr", old.Server.ListenAddr, new.Server.ListenAddr},
		{"server.provider_timeout", old.Server.ProviderTimeout, new.Server.ProviderTimeout},
		{"bot.terminal", old.Bot.Terminal, new.Bot.Terminal},
		{"providers", old.Providers, new.Providers},
		{"fallbacks", old.Fallbacks, new.Fallbacks},
		{"resilience", old.Resilience, new.Resilience},
		{"discord", old.Discord, new.Discord},
	}
	for _, s := range static {
		if !reflect.DeepEqual(s.old, s.new) {
			d.RestartRequired = append(d.RestartRequired, s.section)
		}
	}

	return d
}
