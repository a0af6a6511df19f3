// /internal/victory/victory.go
package victory

import "strings"

// Detector decides whether a client reply closes the deal. Kept as an
// interface so the phrase list can later be swapped for a structured
// completion marker without touching the session flow.
type Detector interface {
	Detect(reply string) bool
}

// Phrases is the literal agreement vocabulary. Case-sensitive substring
// containment, so inflected and capitalized variants are listed explicitly.
// This over-triggers when a phrase shows up mid-sentence ("мы не
// договорились" still matches) and under-triggers on unlisted synonyms —
// known limitation of the contract, not a bug to fix here.
var Phrases = []string{
	"Договорились",
	"договорились",
	"По рукам",
	"по рукам",
	"Записывайте меня",
	"записывайте меня",
	"Уговорили",
	"уговорили",
	"Хорошо, записываюсь",
	"хорошо, записываюсь",
}

// PhraseDetector implements Detector over a fixed phrase list.
type PhraseDetector struct {
	phrases []string
}

// NewPhraseDetector returns a detector over the default phrase list.
func NewPhraseDetector() *PhraseDetector {
	return &PhraseDetector{phrases: Phrases}
}

// NewPhraseDetectorWith returns a detector over a custom phrase list.
func NewPhraseDetectorWith(phrases []string) *PhraseDetector {
	return &PhraseDetector{phrases: phrases}
}

func (d *PhraseDetector) Detect(reply string) bool {
	for _, p := range d.phrases {
		if strings.Contains(reply, p) {
			return true
		}
	}
	return false
}
