package extractor

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}|\d{10,}`)

	connectors = map[profile.Language]*regexp.Regexp{
		profile.French:  regexp.MustCompile(`(?i)\s+(?:et|ou)\s+|\s*[,;/&]\s*`),
		profile.English: regexp.MustCompile(`(?i)\s+(?:and|or)\s+|\s*[,;/&]\s*`),
	}
)

func findEmail(s string) string { return emailPattern.FindString(s) }
func findPhone(s string) string { return strings.TrimSpace(phonePattern.FindString(s)) }

func isEmail(s string) bool { return s != "" && emailPattern.MatchString(s) }
func isPhone(s string) bool { return s != "" && phonePattern.MatchString(s) }

// hasContactData reports whether s carries an email or phone number.
func hasContactData(s string) bool {
	return isEmail(s) || isPhone(s)
}

// SplitContact separates a combined "email and phone" answer. Patterns are
// tried first; only when neither is present is the text split on the
// language's connector word, trying the other language second. A single
// unsplittable value is returned as the email candidate.
func SplitContact(v string, lang profile.Language) (email, phone string) {
	v = strings.TrimSpace(v)
	email, phone = findEmail(v), findPhone(v)
	if email != "" || phone != "" {
		return email, phone
	}
	for _, l := range []profile.Language{lang, lang.Other()} {
		parts := connectors[l].Split(v, 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}
	return v, ""
}

// contactStrategy scans every user turn for email and phone numbers. Matches
// in the turn answering the contact question come first.
func contactStrategy(t transcript.Transcript, opts Options, acc profile.VehicleProfile) profile.VehicleProfile {
	var texts []string
	if answer, ok := expectedAnswer(t, opts.Sequence, profile.ContactInfo); ok {
		texts = append(texts, answer)
	}
	for _, turn := range t.UserTurns() {
		texts = append(texts, turn.Content)
	}

	var emails, phones []string
	for _, text := range texts {
		emails = append(emails, emailPattern.FindAllString(text, -1)...)
		for _, m := range phonePattern.FindAllString(text, -1) {
			phones = append(phones, strings.TrimSpace(m))
		}
	}

	p := profile.New()
	if len(emails) > 0 && !isEmail(acc.Get(profile.Email)) {
		p.Set(profile.Email, emails[0])
	}
	if len(phones) > 0 && !isPhone(acc.Get(profile.Phone)) {
		p.Set(profile.Phone, phones[0])
	}
	if len(emails) > 0 && !acc.Has(profile.ContactPreference) {
		p.Set(profile.ContactPreference, profile.EmailPreference(opts.Language))
	}
	return p
}

// mergeContact fills absent fields and also replaces an email or phone that
// doesn't look like one.
func mergeContact(acc *profile.VehicleProfile, partial profile.VehicleProfile) []profile.Field {
	var filled []profile.Field
	for _, f := range partial.Fields() {
		v := partial.Get(f)
		switch {
		case !acc.Has(f):
		case f == profile.Email && !isEmail(acc.Get(f)):
		case f == profile.Phone && !isPhone(acc.Get(f)):
		default:
			continue
		}
		if acc.Set(f, v) {
			filled = append(filled, f)
		}
	}
	return filled
}
