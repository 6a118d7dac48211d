// Package app wires all InfoBot subsystems into a running application.
//
// The App struct owns the full lifecycle: New builds the router, the session
// manager and every enabled surface, Run serves the surfaces until the
// context is cancelled or the terminal user quits, and Shutdown tears
// everything down in order.
//
// For testing, inject mock providers through [Providers] and replace the
// terminal streams and telemetry via functional options.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/infobot/internal/completion"
	"github.com/MrWong99/infobot/internal/config"
	"github.com/MrWong99/infobot/internal/discord"
	"github.com/MrWong99/infobot/internal/health"
	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/internal/session"
	"github.com/MrWong99/infobot/internal/surface/terminal"
	"github.com/MrWong99/infobot/internal/surface/web"
)

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	router    *intent.Router
	sessions  *session.Manager
	completer *completion.Completer
	health    *health.Handler
	bot       *discord.Bot
	watcher   *config.Watcher

	metrics        *observe.Metrics
	metricsHandler http.Handler
	logLevel       *slog.LevelVar
	clock          func() time.Time

	in  io.Reader
	out io.Writer

	watchPath     string
	watchInterval time.Duration

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New.
type Option func(*App)

// WithTerminalIO replaces stdin and stdout for the terminal surface.
func WithTerminalIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

// WithMetrics records metrics into m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithMetricsHandler exposes h at /metrics on the HTTP surface.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// WithLogLevel lets config reloads adjust lv.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.logLevel = lv }
}

// WithClock sets the clock used by the time intent and transcripts.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.clock = now }
}

// WithConfigWatch watches path and applies hot-reloadable changes. A
// non-positive interval uses [config.DefaultWatchInterval].
func WithConfigWatch(path string, interval time.Duration) Option {
	return func(a *App) {
		a.watchPath = path
		a.watchInterval = interval
	}
}

// New creates an App by wiring all subsystems together. The providers come
// from main.go (built through the config registry).
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	routerOpts := []intent.Option{
		intent.WithCallTimeout(cfg.Server.ProviderTimeout),
		intent.WithMetrics(a.metrics),
	}
	sessionOpts := []session.Option{
		session.WithMetrics(a.metrics),
		session.WithBotName(cfg.Bot.Name),
	}
	if a.clock != nil {
		routerOpts = append(routerOpts, intent.WithClock(a.clock))
		sessionOpts = append(sessionOpts, session.WithClock(a.clock))
	}

	a.router = intent.NewRouter(providers.Deps(), routerOpts...)
	a.sessions = session.NewManager(a.router, sessionOpts...)
	a.completer = completion.New(intent.Commands())
	a.health = health.New(providers.Checkers()...)

	if cfg.Discord.Token != "" {
		bot, err := discord.New(discord.Config{
			Token:      cfg.Discord.Token,
			ChannelIDs: cfg.Discord.ChannelIDs,
		}, a.sessions)
		if err != nil {
			return nil, fmt.Errorf("app: init discord: %w", err)
		}
		a.bot = bot
		a.closers = append(a.closers, bot.Close)
	}

	if a.watchPath != "" {
		var wopts []config.WatcherOption
		if a.watchInterval > 0 {
			wopts = append(wopts, config.WithInterval(a.watchInterval))
		}
		w, err := config.NewWatcher(a.watchPath, a.Reload, wopts...)
		if err != nil {
			return nil, fmt.Errorf("app: watch config: %w", err)
		}
		a.watcher = w
		a.closers = append(a.closers, func() error {
			w.Stop()
			return nil
		})
	}

	return a, nil
}

// Sessions returns the session manager shared by all surfaces.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Health returns the readiness handler.
func (a *App) Health() *health.Handler { return a.health }

// Reload applies the hot-reloadable part of a config change: log level and
// bot name. Other changes are logged as requiring a restart.
func (a *App) Reload(old, new *config.Config) {
	d := config.Diff(old, new)
	if d.LogLevelChanged && a.logLevel != nil {
		a.logLevel.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.BotNameChanged {
		a.sessions.SetBotName(d.NewBotName)
		slog.Info("bot name changed", "name", d.NewBotName)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes take effect after restart", "sections", d.RestartRequired)
	}
}

// Run serves every enabled surface and blocks until ctx is cancelled, a
// surface fails, or the terminal user quits. A clean stop returns nil.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// Holds Run open when no surface blocks on its own.
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if a.cfg.Bot.Terminal {
		g.Go(func() error {
			err := a.runTerminal(gctx)
			// Leaving the REPL ends the process.
			cancel()
			return ignoreCanceled(err)
		})
	}

	if addr := a.cfg.Server.ListenAddr; addr != "" {
		opts := []web.Option{
			web.WithCompleter(a.completer),
			web.WithHealth(a.health),
			web.WithMetrics(a.metrics),
		}
		if a.metricsHandler != nil {
			opts = append(opts, web.WithMetricsHandler(a.metricsHandler))
		}
		srv := web.New(a.sessions, opts...)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
	}

	if a.bot != nil {
		g.Go(func() error {
			return ignoreCanceled(a.bot.Run(gctx))
		})
	}

	slog.Info("app running",
		"terminal", a.cfg.Bot.Terminal,
		"listen_addr", a.cfg.Server.ListenAddr,
		"discord", a.bot != nil,
	)
	return g.Wait()
}

func (a *App) runTerminal(ctx context.Context) error {
	sess := a.sessions.Open(ctx, session.TerminalKey)
	defer a.sessions.Close(context.WithoutCancel(ctx), session.TerminalKey)
	return terminal.New(sess, a.in, a.out, terminal.WithCompleter(a.completer)).Run(ctx)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown closes all sessions, then runs the closers in order. It respects
// the context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "sessions", a.sessions.Len(), "closers", len(a.closers))
		a.sessions.CloseAll(ctx)

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
