// /internal/discord/bot.go
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"nasty-client/internal/ai"
	"nasty-client/internal/bot"
	"nasty-client/internal/command"
	"nasty-client/internal/config"
	"nasty-client/internal/progress"
	"nasty-client/internal/session"
	"nasty-client/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// Bot is the Discord runtime: it owns the gateway session and routes events
// into the command registry with dependencies injected.
type Bot struct {
	dg   *discordgo.Session
	deps *command.Deps
	cfg  *config.Config
}

// StartBot builds the dependency set and runs the bot until ctx is done.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{
		cfg: cfg,
		deps: &command.Deps{
			Storage:  store,
			Progress: progress.NewStore(store),
			Sessions: session.NewManager(),
			AI:       ai.DefaultProvider(cfg),
			Workers:  ai.NewWorkers(cfg.AIWorkers),
			Limiter:  ai.DefaultRateLimiter(),
			Config:   cfg,
		},
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

// onMessageCreate feeds plain messages into message commands. Dialog turns
// arrive this way: in DMs every message counts, in guild channels the bot
// must be mentioned.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	if m.GuildID != "" && !isMentioned(s, m) {
		return
	}

	content := m.Content
	if m.GuildID != "" {
		content = stripMention(s, content)
	}

	for _, cmd := range command.AllCommands() {
		ctx := &command.MessageContext{
			Session: s,
			Event:   m,
			Deps:    b.deps,
		}
		ctx.Event.Content = content
		if err := cmd.Run(ctx); err != nil {
			log.Println("[ERR] Error running message command:", err)
		}
	}
}

func isMentioned(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	for _, user := range m.Mentions {
		if user.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

func stripMention(s *discordgo.Session, content string) string {
	id := s.State.User.ID
	content = strings.ReplaceAll(content, "<@"+id+">", "")
	content = strings.ReplaceAll(content, "<@!"+id+">", "")
	return strings.TrimSpace(content)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
		}
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmdName := i.ApplicationCommandData().Name

		cmd, ok := command.GetCommand(cmdName)
		if !ok {
			log.Printf("[WARN] Unknown command: %s", cmdName)
			return
		}

		ctx := &command.SlashInteractionContext{
			Session: s,
			Event:   i,
			Deps:    b.deps,
		}
		if err := cmd.Run(ctx); err != nil {
			log.Println("[ERR] Error running slash command:", err)
			_ = bot.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: "Что-то пошло не так. Попробуйте ещё раз.",
			})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		var matched command.Command
		for _, cmd := range command.AllCommands() {
			if strings.HasPrefix(customID, cmd.Name()+":") {
				matched = cmd
				break
			}
		}

		if matched == nil {
			log.Printf("[WARN] No matching component for customID: %s", customID)
			return
		}

		compHandler, ok := matched.(command.ComponentInteractionHandler)
		if !ok {
			log.Printf("[WARN] Command %s does not handle components", matched.Name())
			return
		}

		ctx := &command.ComponentInteractionContext{
			Session: s,
			Event:   i,
			Deps:    b.deps,
		}
		if err := compHandler.Component(ctx); err != nil {
			log.Printf("[ERR] Error running component %s: %v", matched.Name(), err)
			_ = bot.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: "Что-то пошло не так. Попробуйте ещё раз.",
			})
		}

	default:
		log.Printf("[DEBUG] Unknown interaction type: %d", i.Type)
	}
}
