package profile

import "strings"

// Canonical enumeration labels written into a profile by the extractor.
var (
	conditionLabels = map[Language][2]string{
		French:  {"Neuf", "Usagé"},
		English: {"New", "Used"},
	}
	yesNoLabels = map[Language][2]string{
		French:  {"Oui", "Non"},
		English: {"Yes", "No"},
	}
	preferenceLabels = map[Language][3]string{
		French:  {"Courriel", "SMS", "Les deux"},
		English: {"Email", "SMS", "Both"},
	}
)

// ExpandCondition maps single-letter N/U answers to the canonical label.
// Any other value is returned unchanged.
func ExpandCondition(v string, lang Language) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "n":
		return conditionLabels[lang][0]
	case "u":
		return conditionLabels[lang][1]
	}
	return v
}

// ExpandYesNo maps O/Y/N and oui/yes/non/no to the canonical yes/no label.
// Any other value is returned unchanged.
func ExpandYesNo(v string, lang Language) string {
	switch Fold(strings.Trim(v, " .!")) {
	case "o", "oui", "y", "yes":
		return yesNoLabels[lang][0]
	case "n", "non", "no":
		return yesNoLabels[lang][1]
	}
	return v
}

// IsYes reports whether v is an affirmative confirmation in either language.
func IsYes(v string) bool {
	switch Fold(strings.Trim(v, " .!")) {
	case "o", "oui", "y", "yes", "exact", "correct", "c'est exact", "ok":
		return true
	}
	return false
}

// EmailPreference is the contact-preference label meaning "by email".
func EmailPreference(lang Language) string {
	return preferenceLabels[lang][0]
}
