// Package mock provides a test double for the discord.Sender interface.
package mock

import (
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/infobot/internal/discord"
)

var _ discord.Sender = (*Sender)(nil)

// SentMessage records one ChannelMessageSend call.
type SentMessage struct {
	ChannelID string
	Content   string
}

// Sender records messages and typing indicators for test assertions.
type Sender struct {
	mu sync.Mutex

	// Sent records all ChannelMessageSend calls in order.
	Sent []SentMessage

	// Typing records the channel of every ChannelTyping call.
	Typing []string

	// SendErr is returned by ChannelMessageSend when non-nil.
	SendErr error

	// TypingErr is returned by ChannelTyping when non-nil.
	TypingErr error
}

// ChannelMessageSend records the message and returns a stub message.
func (m *Sender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChannelID: channelID, Content: content})
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	return &discordgo.Message{ID: "mock-message", ChannelID: channelID, Content: content}, nil
}

// ChannelTyping records the call and returns TypingErr.
func (m *Sender) ChannelTyping(channelID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Typing = append(m.Typing, channelID)
	return m.TypingErr
}

// Messages returns a copy of the recorded messages.
func (m *Sender) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.Sent...)
}
