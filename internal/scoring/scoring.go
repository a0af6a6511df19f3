// /internal/scoring/scoring.go
package scoring

import (
	"math"
	"regexp"
	"strconv"
)

// DefaultBaseScore is used when the evaluation text carries no parseable rating.
const DefaultBaseScore = 10

const (
	minBaseScore = 0
	maxBaseScore = 20
)

// scoreRules are tried in order; the first in-range match wins. The order is
// part of the contract: a generic rule lower in the list never overrides a
// cue-anchored rule above it, but an unrelated number matched by an earlier
// rule does win over the intended sentence below — that is the documented
// behavior, kept as is.
var scoreRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)базовая оценка[^0-9]{0,10}(\d{1,2})`),
	regexp.MustCompile(`(?i)оценка[^0-9]{0,10}(\d{1,2})`),
	regexp.MustCompile(`(\d{1,2})\s*из\s*20`),
	regexp.MustCompile(`(\d{1,2})\s*/\s*20`),
	regexp.MustCompile(`(?i)score[^0-9]{0,10}(\d{1,2})`),
}

// Achievement tiers, highest threshold first. Evaluated on the base score:
// the multiplier rewards harder clients, the achievement rewards the raw
// quality of the dialog.
var achievementTiers = []struct {
	Threshold int
	Label     string
}{
	{18, "🏆 Мастер переговоров"},
	{15, "💪 Профессионал"},
	{12, "👍 Уверенный переговорщик"},
	{8, "🌱 Хорошее начало"},
}

// Result is the outcome of one completed conversation.
type Result struct {
	BaseScore   int
	FinalScore  float64
	Achievement string
}

// ParseBaseScore extracts the 0-20 rating from a free-text evaluation.
// Out-of-range matches are skipped; if nothing matches, DefaultBaseScore
// is returned.
func ParseBaseScore(text string) int {
	for _, rule := range scoreRules {
		for _, m := range rule.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n >= minBaseScore && n <= maxBaseScore {
				return n
			}
		}
	}
	return DefaultBaseScore
}

// Evaluate computes the final score and achievement for an evaluation text.
// Deterministic: same inputs, same result.
func Evaluate(evaluationText string, multiplier float64, messageCount int) Result {
	base := ParseBaseScore(evaluationText)

	effectiveCount := messageCount
	if effectiveCount < 1 {
		effectiveCount = 1
	}

	final := multiplier * float64(base) / float64(effectiveCount)
	final = math.Round(final*100) / 100

	return Result{
		BaseScore:   base,
		FinalScore:  final,
		Achievement: achievementFor(base),
	}
}

func achievementFor(base int) string {
	for _, tier := range achievementTiers {
		if base >= tier.Threshold {
			return tier.Label
		}
	}
	return ""
}
