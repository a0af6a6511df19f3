// /internal/command/command_base.go
package command

import (
	"nasty-client/internal/ai"
	"nasty-client/internal/config"
	"nasty-client/internal/progress"
	"nasty-client/internal/session"
	"nasty-client/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider is implemented by commands registered as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// ComponentInteractionHandler is implemented by commands that own message
// components (buttons). Components are routed by CustomID prefix, which must
// match the command name.
type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
}

// Deps is everything the runtime injects into command contexts: the bot owns
// construction and lifecycle, commands only consume.
type Deps struct {
	Storage  *storage.Storage
	Progress *progress.Store
	Sessions *session.Manager
	AI       ai.Provider
	Workers  *ai.Workers
	Limiter  *ai.RateLimiter
	Config   *config.Config
}

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Deps    *Deps
}
