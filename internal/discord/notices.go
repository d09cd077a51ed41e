package discord

import (
	"fmt"

	embed "github.com/clinet/discordgo-embed"

	"musa/internal/music/player"
	"musa/pkg/util"
)

const embedColor = 0x9b59b6

// watchNotices renders a player's notices into the guild's announce
// channel for as long as the player lives.
func (b *Bot) watchNotices(p *player.Player) {
	for {
		select {
		case <-p.Done():
			return
		case n := <-p.Notices:
			b.renderNotice(p.GuildID(), n)
		}
	}
}

func (b *Bot) renderNotice(guildID string, n player.Notice) {
	b.mu.RLock()
	channelID := b.announceChannels[guildID]
	b.mu.RUnlock()
	if channelID == "" {
		return
	}

	switch n.Kind {
	case player.NoticeNowPlaying:
		if n.Song == nil {
			return
		}
		msg := embed.NewEmbed().
			SetColor(embedColor).
			SetTitle("▶️ Now playing").
			SetDescription(fmt.Sprintf("**%s** `%s` (%s)",
				util.Truncate(n.Song.Title, 120),
				util.FormatDuration(n.Song.Duration),
				n.Song.Service))
		if n.Song.Thumbnail != "" {
			msg = msg.SetThumbnail(n.Song.Thumbnail)
		}
		_, _ = b.dg.ChannelMessageSendEmbed(channelID, msg.MessageEmbed)
	case player.NoticeQueueEnded:
		_, _ = b.dg.ChannelMessageSend(channelID, "📭 Queue finished.")
	case player.NoticeIdleDisconnect:
		_, _ = b.dg.ChannelMessageSend(channelID, "💤 Left the voice channel after sitting idle.")
	case player.NoticeEmptyDisconnect:
		_, _ = b.dg.ChannelMessageSend(channelID, "👋 Everyone left, so I did too.")
	}
}
