package extractor

import (
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// IsAnswer reports whether a user message answers the pending question, as
// opposed to being empty or a request for suggestions ("?", "Lesquels ?").
func IsAnswer(text string) bool {
	text = strings.TrimSpace(text)
	if profile.IsPlaceholder(text) {
		return false
	}
	return !strings.HasSuffix(text, "?")
}

// answers returns the user's valid answers in order.
func answers(t transcript.Transcript) []string {
	var out []string
	for _, turn := range t.UserTurns() {
		if IsAnswer(turn.Content) {
			out = append(out, strings.TrimSpace(turn.Content))
		}
	}
	return out
}

// expectedAnswer returns the answer aligned with field f in seq.
func expectedAnswer(t transcript.Transcript, seq profile.Sequence, f profile.Field) (string, bool) {
	i := seq.Index(f)
	if i < 0 {
		return "", false
	}
	all := answers(t)
	if i >= len(all) {
		return "", false
	}
	return all[i], true
}

// positionalStrategy maps the Nth valid answer to the Nth question.
func positionalStrategy(t transcript.Transcript, opts Options, _ profile.VehicleProfile) profile.VehicleProfile {
	p := profile.New()
	for i, answer := range answers(t) {
		if i >= len(opts.Sequence) {
			break
		}
		record(&p, opts.Sequence[i], answer, opts.Language)
	}
	return p
}

// record stores an answer for f, applying the per-field expansions shared by
// the positional and pairing strategies. Answers carrying contact data are
// refused for fields that cannot hold it.
func record(p *profile.VehicleProfile, f profile.Field, answer string, lang profile.Language) {
	switch f {
	case profile.ContactInfo:
		email, phone := SplitContact(answer, lang)
		p.Fill(profile.Email, email)
		p.Fill(profile.Phone, phone)
		return
	case profile.Email, profile.Phone, profile.ContactPreference:
	default:
		if hasContactData(answer) {
			return
		}
	}

	switch f {
	case profile.Condition:
		answer = profile.ExpandCondition(answer, lang)
	case profile.TradeIn:
		answer = profile.ExpandYesNo(answer, lang)
	}
	p.Fill(f, answer)
}
