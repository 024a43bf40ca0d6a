package chat

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

var recapHeadings = map[profile.Language]string{
	profile.French:  "📋 **RÉCAPITULATIF** (Question %d/%d complétées)",
	profile.English: "📋 **SUMMARY** (Question %d/%d completed)",
}

// Recap renders the running summary Sam shows above each question, in the
// same "✅ Label : value" form the extractor reads back.
func Recap(p profile.VehicleProfile, seq profile.Sequence, lang profile.Language, answered int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, recapHeadings[lang], answered, len(seq))
	sb.WriteString("\n")
	for _, f := range seq {
		v := p.Get(f)
		if f == profile.ContactInfo {
			v = p.ContactLine()
		}
		if v == "" {
			v = "---"
		}
		fmt.Fprintf(&sb, "✅ %s : %s\n", profile.Label(f, lang), v)
	}
	return sb.String()
}

// knownBrands maps folded brand keywords to display names.
var knownBrands = map[string]string{
	"toyota":     "Toyota", "honda": "Honda", "ford": "Ford", "chevrolet": "Chevrolet",
	"nissan":     "Nissan", "mazda": "Mazda", "hyundai": "Hyundai", "kia": "Kia",
	"volkswagen": "Volkswagen", "bmw": "BMW", "mercedes": "Mercedes-Benz", "audi": "Audi",
	"lexus":      "Lexus", "acura": "Acura", "infiniti": "Infiniti", "subaru": "Subaru",
	"mitsubishi": "Mitsubishi", "jeep": "Jeep", "ram": "Ram", "dodge": "Dodge",
	"chrysler":   "Chrysler", "cadillac": "Cadillac", "buick": "Buick", "gmc": "GMC",
	"lincoln":    "Lincoln", "volvo": "Volvo", "porsche": "Porsche", "tesla": "Tesla",
	"genesis":    "Genesis",
}

// MatchBrand finds a known brand named as a whole word in text.
func MatchBrand(text string) (string, bool) {
	for _, w := range profile.Words(profile.Fold(text)) {
		if name, ok := knownBrands[w]; ok {
			return name, true
		}
	}
	return "", false
}

// brandShortcut is the canned reply to a first message that already names
// the brand: the recap followed by the condition question.
func brandShortcut(brand string, seq profile.Sequence, lang profile.Language) string {
	p := profile.New()
	p.Set(profile.Brand, brand)
	return Recap(p, seq, lang, 1) + "\n---\n\n" + profile.Lookup(profile.Condition, lang).Prompt
}
