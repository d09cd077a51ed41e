// Package discord hosts the bot session: slash command registration
// and dispatch, the voice transport, and the voice state watcher that
// feeds channel occupancy into the players.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"musa/internal/command"
	"musa/internal/config"
	"musa/internal/logging"
	"musa/internal/music/player"
	"musa/internal/music/source_resolver"
	"musa/internal/version"
)

// Bot is the Discord front end.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	resolver *source_resolver.SourceResolver
	players  *player.Manager

	mu sync.RWMutex
	// announceChannels remembers, per guild, the text channel of the
	// last music command; playback notices land there.
	announceChannels map[string]string
}

func NewBot(cfg *config.Config, resolver *source_resolver.SourceResolver, opts player.Options) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:               dg,
		cfg:              cfg,
		resolver:         resolver,
		announceChannels: make(map[string]string),
	}
	b.players = player.NewManager(resolver, func(guildID string) player.Transport {
		return newVoiceTransport(dg, guildID)
	}, opts)
	b.players.OnCreate = func(p *player.Player) {
		go b.watchNotices(p)
	}
	return b, nil
}

// Players exposes the per-guild player store to the web layer.
func (b *Bot) Players() *player.Manager { return b.players }

// Run opens the session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	logging.Event("shutdown", "reason", "context cancelled")
	b.players.Shutdown()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logging.Event("bot_ready",
		"app", version.AppName,
		"version", version.AppVersion,
		"user", r.User.Username,
		"guilds", len(r.Guilds))

	defs := make([]*discordgo.ApplicationCommand, 0)
	for _, cmd := range command.All() {
		if def := cmd.SlashDefinition(); def != nil {
			defs = append(defs, def)
		}
	}
	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", defs); err != nil {
		logging.Error("failed to register slash commands", "error", err)
		return
	}
	logging.Event("slash_commands_registered", "count", len(defs))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmd, ok := command.Get(i.ApplicationCommandData().Name)
	if !ok {
		return
	}

	if i.GuildID != "" {
		b.mu.Lock()
		b.announceChannels[i.GuildID] = i.ChannelID
		b.mu.Unlock()
	}

	ctx := &command.Context{
		Session:  s,
		Event:    i,
		Players:  b.players,
		Resolver: b.resolver,
	}
	if err := cmd.Run(ctx); err != nil {
		logging.Error("interaction handler failed", "command", cmd.Name(), "error", err)
	}
}

// onVoiceStateUpdate recounts the humans in the bot's voice channel
// whenever anyone's voice state changes in a guild with a player.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	p, ok := b.players.Peek(v.GuildID)
	if !ok {
		return
	}
	channelID := p.VoiceChannelID()
	if channelID == "" {
		return
	}
	p.HumanCountChanged(b.countHumans(s, v.GuildID, channelID))
}

// countHumans counts non-bot members currently in the channel.
func (b *Bot) countHumans(s *discordgo.Session, guildID, channelID string) int {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}

	humans := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil || member.User == nil || member.User.Bot {
			continue
		}
		humans++
	}
	return humans
}

// FindUserVoiceChannel returns the voice channel the user is in, or
// empty when they are not connected.
func (b *Bot) FindUserVoiceChannel(guildID, userID string) string {
	vs, err := b.dg.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}
