package command

import (
	"github.com/bwmarrin/discordgo"

	"musa/internal/logging"
)

type Middleware func(Command) Command

type wrapped struct {
	Command
	run func(ctx *Context) error
}

func (w *wrapped) Run(ctx *Context) error { return w.run(ctx) }

// WithGuildOnly rejects invocations outside a guild.
func WithGuildOnly() Middleware {
	return func(next Command) Command {
		return &wrapped{Command: next, run: func(ctx *Context) error {
			if ctx.GuildID() == "" {
				return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{
						Content: "This command only works in a server.",
						Flags:   discordgo.MessageFlagsEphemeral,
					},
				})
			}
			return next.Run(ctx)
		}}
	}
}

// WithCommandLogger records every invocation.
func WithCommandLogger() Middleware {
	return func(next Command) Command {
		return &wrapped{Command: next, run: func(ctx *Context) error {
			logging.Event("command_invoked",
				"command", next.Name(),
				"guild", ctx.GuildID(),
				"user", ctx.Username())
			err := next.Run(ctx)
			if err != nil {
				logging.Warn("command failed", "command", next.Name(), "guild", ctx.GuildID(), "error", err)
			}
			return err
		}}
	}
}
