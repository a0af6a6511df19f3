// /internal/command/middleware.go
package command

import (
	"log"
	"time"

	"nasty-client/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

type WrappedCommand struct {
	Command
	Wrap func(ctx interface{}) error
}

func (w *WrappedCommand) Run(ctx interface{}) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *WrappedCommand) Component(ctx *ComponentInteractionContext) error {
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *WrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithCommandLogger records slash command executions into storage history.
func WithCommandLogger() Middleware {
	return func(c Command) Command {
		return &WrappedCommand{
			Command: c,
			Wrap: func(ctx interface{}) error {
				err := c.Run(ctx)

				if v, ok := ctx.(*SlashInteractionContext); ok && v.Deps != nil && v.Deps.Storage != nil {
					user := ResolveUser(v.Event)
					if user != nil {
						if e := v.Deps.Storage.AppendCommandToHistory(storage.CommandHistoryRecord{
							ChannelID: v.Event.ChannelID,
							UserID:    user.ID,
							Username:  user.Username,
							Command:   c.Name(),
							Datetime:  time.Now().UTC(),
						}); e != nil {
							log.Printf("[WARN] Failed to log command /%s: %v", c.Name(), e)
						}
					}
				}
				return err
			},
		}
	}
}

// WithSessionReset discards the caller's active dialog before the command
// runs. Any command outside the active flow ends the conversation without
// scoring, same as the fallback handler does for unknown input.
func WithSessionReset() Middleware {
	return func(c Command) Command {
		return &WrappedCommand{
			Command: c,
			Wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Deps != nil && v.Deps.Sessions != nil {
					if user := ResolveUser(v.Event); user != nil {
						v.Deps.Sessions.Discard(user.ID)
					}
				}
				return c.Run(ctx)
			},
		}
	}
}

// ResolveUser retrieves the user object from an InteractionCreate event,
// which lives under Member in guilds and under User in DMs.
func ResolveUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	return e.User
}
