package rating

import (
	"fmt"
	"log"
	"strings"

	"nasty-client/internal/bot"
	"nasty-client/internal/command"
	"nasty-client/internal/roles"

	"github.com/bwmarrin/discordgo"
)

const leaderboardLimit = 10

type TopCommand struct{}

func (c *TopCommand) Name() string        { return "top" }
func (c *TopCommand) Description() string { return "Leaderboard of the best negotiators" }
func (c *TopCommand) Group() string       { return "rating" }
func (c *TopCommand) Category() string    { return "🏆 Rating" }

func (c *TopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *TopCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	event := context.Event

	board, err := context.Deps.Progress.Leaderboard(leaderboardLimit)
	if err != nil {
		log.Println("[ERR] Leaderboard failed:", err)
		return bot.RespondEphemeral(s, event, "Не получилось загрузить рейтинг. Попробуйте позже.")
	}

	if len(board) == 0 {
		return bot.RespondEmbed(s, event, &discordgo.MessageEmbed{
			Title:       "🏆 Рейтинг переговорщиков",
			Description: "Пока пусто. Станьте первым: /train",
			Color:       bot.EmbedColor,
		})
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for i, record := range board {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s <@%s> — **%.2f** (%d/%d клиентов)\n",
			place, record.UserID, record.TotalScore, len(record.CompletedRoles), len(roles.RoleOrder)))
	}

	return bot.RespondEmbed(s, event, &discordgo.MessageEmbed{
		Title:       "🏆 Рейтинг переговорщиков",
		Description: sb.String(),
		Color:       bot.EmbedColor,
	})
}

func init() {
	command.RegisterCommand(
		&TopCommand{},
		command.WithSessionReset(),
		command.WithCommandLogger(),
	)
}
