package train

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"nasty-client/internal/ai"
	"nasty-client/internal/bot"
	"nasty-client/internal/command"
	"nasty-client/internal/scoring"
	"nasty-client/internal/session"
	"nasty-client/internal/victory"

	"github.com/bwmarrin/discordgo"
)

var timeNow = time.Now

// DialogCommand processes plain messages while a training dialog is active:
// one learner turn per message, victory check on the client's reply, scoring
// and progress commit when the deal is closed.
type DialogCommand struct {
	Detector victory.Detector
}

func (c *DialogCommand) Name() string        { return "dialog" }
func (c *DialogCommand) Description() string { return "Dialog turns with the active client" }
func (c *DialogCommand) Group() string       { return "train" }
func (c *DialogCommand) Category() string    { return "🎭 Training" }

func (c *DialogCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.MessageContext)
	if !ok {
		return nil
	}

	s := context.Session
	event := context.Event
	userID := event.Author.ID
	display := event.Author.DisplayName()
	channelID := event.ChannelID
	msg := strings.TrimSpace(event.Content)

	sess, ok := context.Deps.Sessions.Get(userID)
	if !ok {
		return bot.Message(s, channelID,
			fmt.Sprintf("%s, сейчас нет активного диалога. Используйте /train, чтобы начать.", display))
	}

	if msg == "" {
		return nil
	}

	if !context.Deps.Sessions.TryAcquire(userID) {
		return bot.Message(s, channelID, "Клиент ещё печатает ответ, подождите.")
	}
	defer context.Deps.Sessions.Release(userID)

	if !context.Deps.Limiter.Allow(userID, timeNow()) {
		return bot.Message(s, channelID, "Не так быстро. Дайте клиенту секунду подумать.")
	}

	log.Printf("[CHAT] %s (%s) @ %s: %s", event.Author.Username, userID, channelID, truncateLog(msg, 120))

	done := make(chan struct{})
	go keepTyping(s, channelID, done)

	gen := context.Deps.Workers.Wrap(context.Deps.AI)
	reply, won, err := sess.Advance(gen, c.detector(), msg)
	close(done)

	if err != nil {
		log.Printf("[ERR] AI request failed: %v", err)
		return bot.Message(s, channelID, ai.FallbackReply)
	}
	context.Deps.Limiter.Record(userID, timeNow())

	if !won {
		for _, chunk := range splitMessage("💬 Клиент: "+reply, 2000) {
			if err := bot.Message(s, channelID, chunk); err != nil {
				log.Println("[WARN] Failed to send reply chunk:", err)
			}
		}
		return nil
	}

	return c.finishVictory(context, sess, userID, channelID, reply)
}

// finishVictory runs the evaluation call, computes the score, commits
// progress and reports the result. The session is gone either way.
func (c *DialogCommand) finishVictory(context *command.MessageContext, sess *session.Session, userID, channelID, closingReply string) error {
	s := context.Session
	role := sess.Role

	done := make(chan struct{})
	go keepTyping(s, channelID, done)

	gen := context.Deps.Workers.Wrap(context.Deps.AI)
	evaluation, err := gen.Generate(sess.EvaluationMessages(closingReply))
	close(done)
	if err != nil {
		log.Printf("[ERR] Evaluation request failed: %v", err)
		evaluation = ai.FallbackEvaluation
	}

	result := scoring.Evaluate(evaluation, role.Multiplier, sess.MessageCount)
	messageCount := sess.MessageCount
	context.Deps.Sessions.Discard(userID)

	record, err := context.Deps.Progress.UpdateAfterCompletion(userID, role.Key, result.FinalScore)
	if err != nil {
		log.Printf("[ERR] Failed to save progress for %s: %v", userID, err)
		return bot.Message(s, channelID,
			"Победа засчитана, но сохранить результат не получилось. Попробуйте позже ещё раз.")
	}

	log.Printf("[CHAT] %s beat %s: base=%d final=%.2f messages=%d",
		userID, role.Key, result.BaseScore, result.FinalScore, messageCount)

	embed := victoryEmbed(role, closingReply, evaluation, result, record)
	if err := bot.MessageEmbed(s, channelID, embed); err != nil {
		log.Println("[WARN] Failed to send victory embed:", err)
	}
	return nil
}

func (c *DialogCommand) detector() victory.Detector {
	if c.Detector != nil {
		return c.Detector
	}
	return victory.NewPhraseDetector()
}

func truncateLog(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return cutAtRune(s, max) + "..."
}

func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut == -1 {
			cut = len(cutAtRune(msg, limit))
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}

// cutAtRune trims s to at most max bytes without splitting a UTF-8 sequence.
// Replies are Cyrillic, a byte cut lands mid-rune half the time.
func cutAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func keepTyping(s *discordgo.Session, channelID string, done <-chan struct{}) {
	_ = s.ChannelTyping(channelID)
	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = s.ChannelTyping(channelID)
		}
	}
}

func init() {
	command.RegisterCommand(&DialogCommand{})
}
