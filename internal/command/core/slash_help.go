package core

import (
	"fmt"
	"sort"
	"strings"

	"nasty-client/internal/bot"
	"nasty-client/internal/command"
	"nasty-client/internal/config"
	"nasty-client/internal/version"

	"github.com/bwmarrin/discordgo"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       version.AppName + " Help",
		Description: buildHelpByCategory(),
		Color:       bot.EmbedColor,
	}
	return bot.RespondEmbedEphemeral(context.Session, context.Event, embed)
}

func buildHelpByCategory() string {
	all := command.AllCommands()

	categoryMap := make(map[string][]command.Command)
	for _, cmd := range all {
		sp, ok := cmd.(command.SlashProvider)
		if !ok || sp.SlashDefinition() == nil {
			continue
		}
		cat := cmd.Category()
		categoryMap[cat] = append(categoryMap[cat], cmd)
	}

	type catSort struct {
		Name string
		Sort int
	}
	var sortedCats []catSort
	for cat := range categoryMap {
		sortedCats = append(sortedCats, catSort{cat, config.CategoryWeights[cat]})
	}
	sort.Slice(sortedCats, func(i, j int) bool {
		return sortedCats[i].Sort < sortedCats[j].Sort
	})

	var sb strings.Builder
	for _, cat := range sortedCats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat.Name))
		cmds := categoryMap[cat.Name]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, cmd := range cmds {
			sb.WriteString(fmt.Sprintf("`/%s` - %s\n", cmd.Name(), cmd.Description()))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func init() {
	command.RegisterCommand(
		&HelpCommand{},
		command.WithSessionReset(),
	)
}
