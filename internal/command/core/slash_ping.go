package core

import (
	"fmt"

	"nasty-client/internal/bot"
	"nasty-client/internal/command"

	"github.com/bwmarrin/discordgo"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check that the bot is alive" }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "🕯️ Information" }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	latency := context.Session.HeartbeatLatency().Milliseconds()
	return bot.RespondEphemeral(context.Session, context.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}

func init() {
	command.RegisterCommand(
		&PingCommand{},
		command.WithSessionReset(),
	)
}
