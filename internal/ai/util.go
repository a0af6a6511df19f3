package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FallbackReply and FallbackEvaluation keep the bot in character when the
// provider is down. The evaluation variant carries a parseable default score
// so the scoring path stays on rails.
const (
	FallbackReply = "Извините, сейчас я немного занят... Кажется, у меня проблемы с памятью. Попробуйте еще раз."

	FallbackEvaluation = "Тренер сегодня недоступен, поэтому подробного разбора не будет. " +
		"Клиент согласился — значит, вы справились.\nБазовая оценка: 10/20"
)

func isGarbageResponse(s string) bool {
	l := strings.ToLower(s)

	if strings.Contains(l, "<html") {
		return true
	}
	if strings.Contains(l, "not allowed") {
		return true
	}
	if len(strings.TrimSpace(s)) < 2 {
		return true
	}
	return false
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

func cleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	re := regexp.MustCompile(`(?s)<think>.*?</think>`)
	reply = re.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)

	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {"«", "»"}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close)
				reply = strings.TrimSpace(reply)
				break
			}
		}
	}

	if len(reply) > 2800 {
		cut := 2800
		for cut > 0 && !utf8.RuneStart(reply[cut]) {
			cut--
		}
		reply = reply[:cut] + "\n\n[truncated]"
	}

	return reply
}
