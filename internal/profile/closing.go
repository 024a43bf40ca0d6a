package profile

import "strings"

// Rocket marks the assistant's closing message.
const Rocket = "🚀"

var closingPhrases = map[Language]string{
	French:  "Parfait ! Je mets la pression sur les concessionnaires et je reviens vite. 🚀",
	English: "Perfect! I'm putting pressure on the dealerships and I'll be back soon. 🚀",
}

// closingMarkers are matched after apostrophe normalisation and Fold, so
// "Parfait! je mets la pression" and "Perfect! I’m putting pressure" both count.
var closingMarkers = []string{
	Fold("Parfait ! Je mets la pression"),
	Fold("Parfait! Je mets la pression"),
	Fold("Perfect! I'm putting pressure"),
	Fold("Perfect ! I'm putting pressure"),
}

// ClosingPhrase is the message the assistant sends once the buyer confirms
// their profile.
func ClosingPhrase(lang Language) string {
	return closingPhrases[lang]
}

// IsClosing reports whether an assistant message is the completion signal:
// it carries the rocket marker and one of the closing phrases, in either
// language.
func IsClosing(text string) bool {
	if !strings.Contains(text, Rocket) {
		return false
	}
	folded := Fold(normalizeApostrophes(text))
	for _, m := range closingMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

func normalizeApostrophes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'").Replace(s)
}
