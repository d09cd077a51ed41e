// Package music implements the /music slash command family.
package music

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"musa/internal/command"
	"musa/internal/music/providers"
	"musa/internal/music/providers/youtube"
	"musa/internal/music/source_resolver"
	"musa/pkg/util"
)

const embedColor = 0x9b59b6

const maxQueueLines = 10

type MusicCommand struct {
	// FindVoiceChannel locates the voice channel the user currently sits
	// in; empty when they are not connected.
	FindVoiceChannel func(guildID, userID string) string
}

func (c *MusicCommand) Name() string        { return "music" }
func (c *MusicCommand) Description() string { return "Play music from YouTube, Internet Archive and radio" }

func (c *MusicCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Queue a song, link or playlist",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "input",
						Description: "Song name, YouTube link or playlist link",
						Required:    true,
					},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "skip", Description: "Skip the current track"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "pause", Description: "Pause playback"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "resume", Description: "Resume playback"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "stop", Description: "Stop playback and leave the voice channel"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "queue", Description: "Show the queue"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "shuffle", Description: "Shuffle the queue"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "services", Description: "Show audio service status"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "formats",
				Description: "List the audio formats of a YouTube video with their scores",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "url",
						Description: "YouTube video link",
						Required:    true,
					},
				},
			},
		},
	}
}

func (c *MusicCommand) Run(ctx *command.Context) error {
	options := ctx.Event.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondEphemeral(ctx, "Pick a subcommand.")
	}
	sub := options[0]

	switch sub.Name {
	case "play":
		return c.runPlay(ctx, sub)
	case "skip":
		return c.runSkip(ctx)
	case "pause":
		return c.runPause(ctx)
	case "resume":
		return c.runResume(ctx)
	case "stop":
		return c.runStop(ctx)
	case "queue":
		return c.runQueue(ctx)
	case "shuffle":
		return c.runShuffle(ctx)
	case "services":
		return c.runServices(ctx)
	case "formats":
		return c.runFormats(ctx, sub)
	}
	return respondEphemeral(ctx, "Unknown subcommand.")
}

func (c *MusicCommand) runPlay(ctx *command.Context, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var input string
	for _, opt := range sub.Options {
		if opt.Name == "input" {
			input = strings.TrimSpace(opt.StringValue())
		}
	}
	if input == "" {
		return respondEphemeral(ctx, "🎵 Error: input is required")
	}

	// Defer right away; searching and resolving can take seconds.
	if err := ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	channelID := c.FindVoiceChannel(ctx.GuildID(), ctx.UserID())
	if channelID == "" {
		return followup(ctx, "🎵 Join a voice channel first.")
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p := ctx.Players.Get(ctx.GuildID())

	// Playlist links start playing immediately and fill the queue in the
	// background.
	if exp, ok := ctx.Resolver.FindExpander(input); ok {
		first, fetch, err := exp.Expand(reqCtx, input)
		if err != nil {
			return followup(ctx, fmt.Sprintf("🎵 Error: could not read playlist: %v", err))
		}
		if err := p.PlayPlaylist(reqCtx, channelID, first, fetch); err != nil {
			return followup(ctx, fmt.Sprintf("🎵 Error: %v", err))
		}
		return followup(ctx, fmt.Sprintf("🎶 Queued playlist, starting with **%s**. More tracks are loading.", first.Title))
	}

	songs := c.lookup(reqCtx, ctx.Resolver, input)
	if len(songs) == 0 {
		return followup(ctx, fmt.Sprintf("🎵 Nothing found for **%s** on any service.", input))
	}

	pick := songs[0]
	if err := p.Play(reqCtx, channelID, pick); err != nil {
		return followup(ctx, fmt.Sprintf("🎵 Error: %v", err))
	}

	label := pick.Title
	if pick.Creator != "" {
		label += " by " + pick.Creator
	}
	return followup(ctx, fmt.Sprintf("🎶 Queued **%s** (%s)", label, pick.Service))
}

// lookup turns the raw input into descriptors: direct video links skip
// the search entirely, everything else goes through priority fallback.
func (c *MusicCommand) lookup(reqCtx context.Context, resolver *source_resolver.SourceResolver, input string) []providers.SongInfo {
	if id, ok := youtube.VideoID(input); ok {
		return []providers.SongInfo{{
			Service:   providers.ServiceYouTube,
			ID:        id,
			Title:     input,
			Thumbnail: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
			PageURL:   input,
		}}
	}
	return resolver.SearchWithFallback(reqCtx, input)
}

func (c *MusicCommand) runSkip(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "⏭ Nothing is playing.")
	}
	if err := p.Skip(); err != nil {
		return respondEphemeral(ctx, "⏭ "+err.Error())
	}
	return respond(ctx, "⏭ Skipped.")
}

func (c *MusicCommand) runPause(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "⏸ Nothing is playing.")
	}
	if err := p.Pause(); err != nil {
		return respondEphemeral(ctx, "⏸ "+err.Error())
	}
	return respond(ctx, "⏸ Paused.")
}

func (c *MusicCommand) runResume(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "▶️ Nothing is paused.")
	}
	if err := p.Resume(); err != nil {
		return respondEphemeral(ctx, "▶️ "+err.Error())
	}
	return respond(ctx, "▶️ Resumed.")
}

func (c *MusicCommand) runStop(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "⏹ Nothing is playing.")
	}
	_ = p.Stop()
	return respond(ctx, "⏹ Stopped and left the voice channel.")
}

func (c *MusicCommand) runShuffle(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "🔀 The queue is empty.")
	}
	n := p.Shuffle()
	if n == 0 {
		return respondEphemeral(ctx, "🔀 The queue is empty.")
	}
	return respond(ctx, fmt.Sprintf("🔀 Shuffled %d track(s).", n))
}

func (c *MusicCommand) runQueue(ctx *command.Context) error {
	p, ok := ctx.Players.Peek(ctx.GuildID())
	if !ok {
		return respondEphemeral(ctx, "📜 The queue is empty.")
	}

	msg := embed.NewEmbed().SetColor(embedColor).SetTitle("📜 Queue")

	if now, err := p.NowPlaying(); err == nil {
		msg = msg.AddField("Now playing",
			fmt.Sprintf("**%s** `%s` (%s)", util.Truncate(now.Title, 80), util.FormatDuration(now.Duration), now.Service))
	}

	queue := p.Queue()
	if len(queue) == 0 {
		msg = msg.SetDescription("No tracks queued.")
	} else {
		var b strings.Builder
		for i, song := range queue {
			if i == maxQueueLines {
				fmt.Fprintf(&b, "…and %d more\n", len(queue)-maxQueueLines)
				break
			}
			fmt.Fprintf(&b, "%d. **%s** `%s` (%s)\n",
				i+1, util.Truncate(song.Title, 60), util.FormatDuration(song.Duration), song.Service)
		}
		msg = msg.SetDescription(b.String())
	}
	if p.PopulationRunning() {
		msg = msg.SetFooter("Playlist still loading…")
	}

	return respondEmbed(ctx, msg.MessageEmbed)
}

func (c *MusicCommand) runServices(ctx *command.Context) error {
	// Defer; the status check probes every provider over the network.
	if err := ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	statusCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status := ctx.Resolver.Status(statusCtx)
	msg := embed.NewEmbed().SetColor(embedColor).SetTitle("🛰 Audio services")

	for _, reg := range ctx.Resolver.Registry().Snapshot() {
		st := status[reg.Name]
		icon := "🔴"
		line := st.Status
		switch st.Status {
		case source_resolver.StatusOnline:
			icon = "🟢"
		case source_resolver.StatusError:
			icon = "⚠️"
			line = "error: " + util.Truncate(st.Error, 100)
		}
		if !st.Enabled {
			line = "disabled"
		}
		msg = msg.AddField(fmt.Sprintf("%s %s (priority %d)", icon, reg.Name, st.Priority), line)
	}

	_, err := ctx.Session.FollowupMessageCreate(ctx.Event.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{msg.MessageEmbed},
	})
	return err
}

// runFormats is a debugging aid: it lists every extractor format for a
// video together with the score the resolver ranks it by.
func (c *MusicCommand) runFormats(ctx *command.Context, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var input string
	for _, opt := range sub.Options {
		if opt.Name == "url" {
			input = strings.TrimSpace(opt.StringValue())
		}
	}
	id, ok := youtube.VideoID(input)
	if !ok {
		return respondEphemeral(ctx, "🔬 That does not look like a YouTube video link.")
	}

	prov, ok := ctx.Resolver.Registry().Get(providers.ServiceYouTube)
	if !ok {
		return respondEphemeral(ctx, "🔬 The youtube service is not registered.")
	}
	reporter, ok := prov.(*youtube.Provider)
	if !ok {
		return respondEphemeral(ctx, "🔬 The youtube service cannot report formats.")
	}

	if err := ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title, formats, err := reporter.FormatReport(reqCtx, id)
	if err != nil {
		return followup(ctx, fmt.Sprintf("🔬 Error: %v", err))
	}

	var b strings.Builder
	for i, f := range formats {
		if i == maxQueueLines {
			fmt.Fprintf(&b, "…and %d more\n", len(formats)-maxQueueLines)
			break
		}
		fmt.Fprintf(&b, "`%d` %s, %d kbps, %d ch, score %d\n",
			f.Itag, util.Truncate(f.MimeType, 50), f.Bitrate/1000, f.Channels, f.Score)
	}

	msg := embed.NewEmbed().SetColor(embedColor).
		SetTitle("🔬 " + util.Truncate(title, 80)).
		SetDescription(b.String())
	_, err = ctx.Session.FollowupMessageCreate(ctx.Event.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{msg.MessageEmbed},
	})
	return err
}

func respond(ctx *command.Context, content string) error {
	return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func respondEphemeral(ctx *command.Context, content string) error {
	return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbed(ctx *command.Context, e *discordgo.MessageEmbed) error {
	return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{e}},
	})
}

func followup(ctx *command.Context, content string) error {
	_, err := ctx.Session.FollowupMessageCreate(ctx.Event.Interaction, false, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}
