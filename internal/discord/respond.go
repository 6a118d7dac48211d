package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageRunes is Discord's limit on message content length.
const MaxMessageRunes = 2000

// Sender is the subset of *discordgo.Session used to answer in a channel.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

var _ Sender = (*discordgo.Session)(nil)

// SendReply posts content to channelID, split into as many messages as the
// length limit requires.
func SendReply(s Sender, channelID, content string) error {
	for _, part := range splitRunes(content, MaxMessageRunes) {
		if _, err := s.ChannelMessageSend(channelID, part); err != nil {
			return fmt.Errorf("discord: send message: %w", err)
		}
	}
	return nil
}

// splitRunes cuts s into chunks of at most n runes. The empty string yields
// one empty chunk.
func splitRunes(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
