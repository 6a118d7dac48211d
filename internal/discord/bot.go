// Package discord provides the Discord surface for InfoBot. It owns the
// discordgo.Session lifecycle and answers text messages in the configured
// channels, keeping one chat session per channel.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/infobot/internal/observe"
	"github.com/MrWong99/infobot/internal/session"
)

// Config holds Discord bot configuration.
type Config struct {
	// Token is the bot token without the "Bot " prefix.
	Token string

	// ChannelIDs restricts the bot to these channels. Empty means every
	// channel the bot can read.
	ChannelIDs []string
}

// Handler turns Discord messages into session submissions. It holds no
// gateway state, so it can be driven directly in tests.
type Handler struct {
	sessions *session.Manager
	channels []string
}

// NewHandler returns a Handler answering in channels (all when empty).
func NewHandler(sessions *session.Manager, channels []string) *Handler {
	return &Handler{sessions: sessions, channels: slices.Clone(channels)}
}

// Accepts reports whether m should be answered: it must come from a human
// other than selfID, carry text, and be posted in an allowed channel.
func (h *Handler) Accepts(selfID string, m *discordgo.Message) bool {
	switch {
	case m == nil || m.Author == nil:
		return false
	case m.Author.ID == selfID || m.Author.Bot:
		return false
	case m.Content == "":
		return false
	case len(h.channels) > 0 && !slices.Contains(h.channels, m.ChannelID):
		return false
	}
	return true
}

// HandleMessage submits m to its channel's session and posts the reply.
// Messages rejected by [Handler.Accepts] are ignored.
func (h *Handler) HandleMessage(ctx context.Context, s Sender, selfID string, m *discordgo.Message) {
	if !h.Accepts(selfID, m) {
		return
	}
	log := observe.Logger(ctx).With("channel_id", m.ChannelID, "author_id", m.Author.ID)

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		log.Debug("discord: typing indicator failed", "err", err)
	}

	sess := h.sessions.Open(ctx, session.DiscordKey(m.ChannelID))
	_, bot, _ := sess.Submit(ctx, m.Content)
	if err := SendReply(s, m.ChannelID, bot.Text); err != nil {
		log.Warn("discord: failed to send reply", "err", err)
	}
}

// Bot owns the Discord gateway connection.
type Bot struct {
	handler *Handler

	mu        sync.RWMutex
	session   *discordgo.Session
	ctx       context.Context
	closeOnce sync.Once
}

// New creates a Bot. The gateway connection is opened by [Bot.Run].
func New(cfg Config, sessions *session.Manager) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		handler: NewHandler(sessions, cfg.ChannelIDs),
		session: dg,
		ctx:     context.Background(),
	}
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.mu.RLock()
	ctx := b.ctx
	b.mu.RUnlock()

	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	b.handler.HandleMessage(ctx, s, selfID, m.Message)
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	dg := b.session
	b.mu.Unlock()

	if err := dg.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	slog.Info("discord bot connected", "channels", len(b.handler.channels))

	<-ctx.Done()
	return b.Close()
}

// Close disconnects from Discord. It is safe to call more than once.
func (b *Bot) Close() error {
	var closeErr error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err := b.session.Close(); err != nil {
			closeErr = fmt.Errorf("discord: close session: %w", err)
		}
		slog.Info("discord bot closed")
	})
	return closeErr
}
