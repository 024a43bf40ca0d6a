package email

import (
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

// term is one enumerated value known in both languages. Aliases are extra
// spellings accepted on input, compared after profile.Fold.
type term struct {
	fr, en  string
	aliases []string
}

func (t term) in(lang profile.Language) string {
	if lang == profile.English {
		return t.en
	}
	return t.fr
}

func (t term) matches(folded string) bool {
	if folded == profile.Fold(t.fr) || folded == profile.Fold(t.en) {
		return true
	}
	for _, a := range t.aliases {
		if folded == a {
			return true
		}
	}
	return false
}

// vocabulary translates enumerated profile values between languages.
var vocabulary = map[profile.Field][]term{
	profile.Condition: {
		{fr: "Neuf", en: "New", aliases: []string{"n", "neuve"}},
		{fr: "Usagé", en: "Used", aliases: []string{"u", "usagee", "occasion", "d'occasion"}},
	},
	profile.Powertrain: {
		{fr: "Essence", en: "Gas", aliases: []string{"gasoline", "petrol"}},
		{fr: "Hybride", en: "Hybrid"},
		{fr: "Électrique", en: "Electric", aliases: []string{"ev"}},
	},
	profile.Drivetrain: {
		{fr: "Traction avant", en: "Front-wheel drive", aliases: []string{"fwd"}},
		{fr: "Traction intégrale", en: "All-wheel drive", aliases: []string{"awd"}},
		{fr: "Propulsion", en: "Rear-wheel drive", aliases: []string{"rwd"}},
		{fr: "Transmission automatique", en: "Automatic transmission", aliases: []string{"automatique", "automatic"}},
	},
	profile.PaymentPlan: {
		{fr: "Financement", en: "Financing"},
		{fr: "Location", en: "Lease", aliases: []string{"leasing"}},
		{fr: "Comptant", en: "Cash"},
	},
	profile.TradeIn: {
		{fr: "Oui", en: "Yes", aliases: []string{"o", "y"}},
		{fr: "Non", en: "No", aliases: []string{"n"}},
	},
	profile.ContactPreference: {
		{fr: "Courriel", en: "Email", aliases: []string{"e-mail", "mail", "par courriel", "by email"}},
		{fr: "SMS", en: "SMS", aliases: []string{"texto", "text", "text message"}},
		{fr: "Courriel et SMS", en: "Both email and SMS", aliases: []string{"les deux", "both"}},
	},
}

var fallbacks = map[profile.Language]string{
	profile.French:  "Non spécifié",
	profile.English: "Not specified",
}

// display returns v trimmed, or the localized fallback when v is empty or a
// placeholder.
func display(v string, lang profile.Language) string {
	v = strings.TrimSpace(v)
	if profile.IsPlaceholder(v) {
		return fallbacks[lang]
	}
	return v
}

// translate renders an enumerated value in lang. Unknown values are shown
// verbatim, except condition which defaults to new.
func translate(f profile.Field, v string, lang profile.Language) string {
	folded := profile.Fold(v)
	for _, t := range vocabulary[f] {
		if t.matches(folded) {
			return t.in(lang)
		}
	}
	if f == profile.Condition {
		return vocabulary[profile.Condition][0].in(lang)
	}
	return display(v, lang)
}

type privacyText struct {
	short, long string
}

var privacyTexts = map[profile.Language][2]privacyText{
	profile.French: {
		{
			short: "Partager mes infos avec les concessionnaires gagnants seulement",
			long:  "Partager mes informations avec les concessionnaires gagnants seulement",
		},
		{
			short: "Ne pas partager - Sam relaie tout",
			long:  "Ne pas partager mes informations - Sam relayera toutes les communications",
		},
	},
	profile.English: {
		{
			short: "Share my info with winning dealerships only",
			long:  "Share my information with winning dealerships only",
		},
		{
			short: "Do not share - Sam relays everything",
			long:  "Do not share my information - Sam will relay all communications",
		},
	},
}

// privacy maps a privacy answer to its display text. Any answer starting
// with "A" means share with the winning dealerships.
func privacy(v string, lang profile.Language) privacyText {
	v = strings.TrimSpace(v)
	if profile.IsPlaceholder(v) {
		fb := fallbacks[lang]
		return privacyText{short: fb, long: fb}
	}
	texts := privacyTexts[lang]
	if strings.HasPrefix(strings.ToUpper(v), "A") {
		return texts[0]
	}
	return texts[1]
}
