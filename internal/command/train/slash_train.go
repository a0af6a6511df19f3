package train

import (
	"fmt"
	"log"
	"strings"

	"nasty-client/internal/bot"
	"nasty-client/internal/command"
	"nasty-client/internal/roles"
	"nasty-client/internal/session"

	"github.com/bwmarrin/discordgo"
)

type TrainCommand struct{}

func (c *TrainCommand) Name() string        { return "train" }
func (c *TrainCommand) Description() string { return "Pick a difficult client and start a training dialog" }
func (c *TrainCommand) Group() string       { return "train" }
func (c *TrainCommand) Category() string    { return "🎭 Training" }

func (c *TrainCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *TrainCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	event := context.Event

	var rows []discordgo.MessageComponent
	for _, role := range roles.All() {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("%s — %s", role.Name, role.LevelDescription),
				Style:    discordgo.SecondaryButton,
				CustomID: "train:role:" + role.Key,
			},
		}})
	}

	embed := &discordgo.MessageEmbed{
		Title: "👋 Тренажер «Вредный Клиент»",
		Description: "Я сыграю клиента массажного салона, а ты — администратора.\n" +
			"Твоя цель — убедить клиента записаться на массаж.\n\n" +
			"Выбери, с кем хочешь потренироваться сегодня:",
		Color: bot.EmbedColor,
	}

	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: rows,
		},
	})
}

// Component handles the role selection buttons: validates the key, seeds a
// fresh session with the client's opening line and enters the dialog.
func (c *TrainCommand) Component(ctx *command.ComponentInteractionContext) error {
	s, event := ctx.Session, ctx.Event
	customID := event.MessageComponentData().CustomID

	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[1] != "role" {
		return bot.RespondEmbedEphemeral(s, event, &discordgo.MessageEmbed{
			Description: "Эта кнопка мне незнакома.",
		})
	}

	role, ok := roles.Get(parts[2])
	if !ok {
		return bot.RespondEmbedEphemeral(s, event, &discordgo.MessageEmbed{
			Description: "Не знаю такого клиента. Начните заново: /train",
		})
	}

	user := command.ResolveUser(event)
	if user == nil {
		return nil
	}

	// Re-entry: picking a role always abandons the previous dialog.
	ctx.Deps.Sessions.Discard(user.ID)

	if err := bot.RespondDeferred(s, event); err != nil {
		log.Println("[ERR] Failed to defer train interaction:", err)
		return err
	}

	done := make(chan struct{})
	go keepTyping(s, event.ChannelID, done)

	sess := session.New(role)
	opening, err := sess.Start(ctx.Deps.Workers.Wrap(ctx.Deps.AI))
	close(done)
	if err != nil {
		log.Printf("[ERR] AI start failed for %s (%s): %v", user.Username, role.Key, err)
		return bot.FollowupEmbed(s, event, &discordgo.MessageEmbed{
			Description: "Клиент не берёт трубку. Попробуйте выбрать его ещё раз чуть позже.",
			Color:       bot.EmbedColor,
		})
	}
	ctx.Deps.Limiter.Record(user.ID, timeNow())
	ctx.Deps.Sessions.Put(user.ID, sess)

	log.Printf("[CHAT] %s (%s) started dialog with %s", user.Username, user.ID, role.Key)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Вы выбрали: %s (%s)", role.Name, role.LevelDescription),
		Description: fmt.Sprintf("Твоя цель: убедить клиента записаться.\n\n💬 Клиент: %s", opening),
		Color:       bot.EmbedColor,
	}
	return bot.FollowupEmbed(s, event, embed)
}

func init() {
	command.RegisterCommand(
		&TrainCommand{},
		command.WithSessionReset(),
		command.WithCommandLogger(),
	)
}
