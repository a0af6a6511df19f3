package train

import (
	"fmt"
	"strings"

	"nasty-client/internal/bot"
	"nasty-client/internal/roles"
	"nasty-client/internal/scoring"
	"nasty-client/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// victoryEmbed renders the post-victory report: the closing line, the
// trainer's write-up, the numbers and what to attack next.
func victoryEmbed(role roles.Role, closingReply, evaluation string, result scoring.Result, record *storage.UserProgress) *discordgo.MessageEmbed {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💬 Клиент: %s\n\n", closingReply))
	sb.WriteString(fmt.Sprintf("📋 Разбор тренера:\n%s\n", trimForEmbed(evaluation, 2500)))

	fields := []*discordgo.MessageEmbedField{
		{Name: "Базовая оценка", Value: fmt.Sprintf("%d/20", result.BaseScore), Inline: true},
		{Name: "Очки за диалог", Value: fmt.Sprintf("%.2f (×%.1f за сложность)", result.FinalScore, role.Multiplier), Inline: true},
		{Name: "Общий счёт", Value: fmt.Sprintf("%.2f", record.TotalScore), Inline: true},
	}
	if result.Achievement != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Достижение", Value: result.Achievement,
		})
	}
	if next, ok := nextRole(record); ok {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Следующий уровень",
			Value: fmt.Sprintf("%s (%s) — /train", next.Name, next.LevelDescription),
		})
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Следующий уровень",
			Value: "Все клиенты пройдены! Улучшайте свои лучшие результаты — /train",
		})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🥳 ПОБЕДА! Клиент %s соглашается на запись", role.Name),
		Description: sb.String(),
		Fields:      fields,
		Color:       bot.EmbedColor,
	}
}

// nextRole returns the first role in progression order the learner has not
// completed yet.
func nextRole(record *storage.UserProgress) (roles.Role, bool) {
	completed := map[string]bool{}
	for _, key := range record.CompletedRoles {
		completed[key] = true
	}
	for _, key := range roles.RoleOrder {
		if !completed[key] {
			role, _ := roles.Get(key)
			return role, true
		}
	}
	return roles.Role{}, false
}

func trimForEmbed(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return cutAtRune(s, max) + "..."
}
