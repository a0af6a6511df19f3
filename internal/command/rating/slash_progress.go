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

type ProgressCommand struct{}

func (c *ProgressCommand) Name() string        { return "progress" }
func (c *ProgressCommand) Description() string { return "Your levels, best scores and total" }
func (c *ProgressCommand) Group() string       { return "rating" }
func (c *ProgressCommand) Category() string    { return "🏆 Rating" }

func (c *ProgressCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ProgressCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	event := context.Event

	user := command.ResolveUser(event)
	if user == nil {
		return nil
	}

	record, err := context.Deps.Progress.GetOrCreate(user.ID)
	if err != nil {
		log.Println("[ERR] Progress lookup failed:", err)
		return bot.RespondEphemeral(s, event, "Не получилось загрузить прогресс. Попробуйте позже.")
	}

	completed := map[string]bool{}
	for _, key := range record.CompletedRoles {
		completed[key] = true
	}

	var sb strings.Builder
	for _, role := range roles.All() {
		mark := "▫️"
		detail := "не пройден"
		if completed[role.Key] {
			mark = "✅"
			detail = fmt.Sprintf("лучший результат %.2f", record.BestScores[role.Key])
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s) — %s\n", mark, role.Name, role.LevelDescription, detail))
	}
	sb.WriteString(fmt.Sprintf("\nОбщий счёт: **%.2f**", record.TotalScore))

	return bot.RespondEmbedEphemeral(s, event, &discordgo.MessageEmbed{
		Title:       "📈 Ваш прогресс",
		Description: sb.String(),
		Color:       bot.EmbedColor,
	})
}

func init() {
	command.RegisterCommand(
		&ProgressCommand{},
		command.WithSessionReset(),
		command.WithCommandLogger(),
	)
}
