package profile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace so that
// "Modèle", "MODELE" and " modele " compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Words splits folded text into letter/digit tokens.
func Words(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var placeholders = map[string]bool{
	"":                  true,
	"-":                 true,
	"--":                true,
	"---":               true,
	"n/a":               true,
	"na":                true,
	"?":                 true,
	"non specifie":      true,
	"not specified":     true,
	"reponse collectee": true,
	"collected answer":  true,
}

// IsPlaceholder reports whether v is a filler token rather than real data:
// dashes, N/A, a bare question mark or a bracketed template slot such as
// "[réponse collectée]".
func IsPlaceholder(v string) bool {
	f := Fold(v)
	f = strings.Trim(f, "*_ ")
	if strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]") {
		return true
	}
	return placeholders[f]
}

// Keyword is a folded matching term. A trailing '*' makes it a word prefix;
// a term containing a space matches a run of whole words.
type Keyword string

// Match reports whether the keyword occurs in the tokenised text.
func (k Keyword) Match(words []string) bool {
	kw := string(k)
	if strings.Contains(kw, " ") {
		parts := strings.Fields(kw)
		for i := 0; i+len(parts) <= len(words); i++ {
			ok := true
			for j, p := range parts {
				if words[i+j] != p {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	}
	if prefix, ok := strings.CutSuffix(kw, "*"); ok {
		for _, w := range words {
			if strings.HasPrefix(w, prefix) {
				return true
			}
		}
		return false
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}
