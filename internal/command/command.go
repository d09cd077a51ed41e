// Package command holds the slash command registry and the middleware
// chain commands are wrapped with before registration.
package command

import (
	"github.com/bwmarrin/discordgo"

	"musa/internal/music/player"
	"musa/internal/music/source_resolver"
)

// Context is handed to every command invocation.
type Context struct {
	Session  *discordgo.Session
	Event    *discordgo.InteractionCreate
	Players  *player.Manager
	Resolver *source_resolver.SourceResolver
}

// Command is one registered slash command.
type Command interface {
	Name() string
	Description() string
	SlashDefinition() *discordgo.ApplicationCommand
	Run(ctx *Context) error
}

// GuildID is a nil-safe accessor; empty in DMs.
func (c *Context) GuildID() string {
	if c.Event == nil {
		return ""
	}
	return c.Event.GuildID
}

// UserID returns the invoking user regardless of guild/DM origin.
func (c *Context) UserID() string {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User.ID
	}
	if c.Event.User != nil {
		return c.Event.User.ID
	}
	return ""
}

// Username mirrors UserID for log lines.
func (c *Context) Username() string {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User.Username
	}
	if c.Event.User != nil {
		return c.Event.User.Username
	}
	return ""
}
