package extractor

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

var (
	completeMarker = regexp.MustCompile(`(?i)(?:voici votre profil complet|here is your complete profile|profil complet|complete profile)\s*:?`)
	completeEnd    = regexp.MustCompile(`(?i)est-ce exact|is this correct`)

	// labelLine matches "- Label : value", "✅ Label: value" and
	// "**Label** : value".
	labelLine = regexp.MustCompile(`^\s*(?:[-•*✅]+\s*)?(?:\*\*)?([^:：\n]{1,60}?)(?:\*\*)?\s*[:：]\s*(.*?)\s*$`)
)

// summaryStrategy parses the latest "complete profile" block the assistant
// shows before asking the buyer to confirm.
func summaryStrategy(t transcript.Transcript, opts Options, _ profile.VehicleProfile) profile.VehicleProfile {
	for i := len(t) - 1; i >= 0; i-- {
		turn := t[i]
		if turn.Role != transcript.RoleAssistant {
			continue
		}
		loc := completeMarker.FindStringIndex(turn.Content)
		if loc == nil {
			continue
		}
		block := turn.Content[loc[1]:]
		if end := completeEnd.FindStringIndex(block); end != nil {
			block = block[:end[0]]
		}
		return parseLabeled(block, opts.Language)
	}
	return profile.New()
}

// recapStrategy reads the running recap ("✅ Marque : Toyota") from the
// most recent assistant turn that carries one. It keeps early answers
// recoverable after history pruning.
func recapStrategy(t transcript.Transcript, opts Options, _ profile.VehicleProfile) profile.VehicleProfile {
	for i := len(t) - 1; i >= 0; i-- {
		turn := t[i]
		if turn.Role != transcript.RoleAssistant {
			continue
		}
		block := turn.Content
		if idx := separatorIndex(block); idx >= 0 {
			block = block[:idx]
		}
		if countLabeled(block) < 2 {
			continue
		}
		return parseLabeled(block, opts.Language)
	}
	return profile.New()
}

// parseLabeled reads every recognised "Label : value" line. The first value
// seen for a field wins.
func parseLabeled(block string, lang profile.Language) profile.VehicleProfile {
	p := profile.New()
	for _, line := range strings.Split(block, "\n") {
		field, value, ok := parseLabelLine(line)
		if !ok {
			continue
		}
		switch field {
		case profile.ContactInfo:
			email, phone := SplitContact(value, lang)
			p.Fill(profile.Email, email)
			p.Fill(profile.Phone, phone)
		case profile.Condition:
			p.Fill(field, profile.ExpandCondition(value, lang))
		case profile.TradeIn:
			p.Fill(field, profile.ExpandYesNo(value, lang))
		default:
			p.Fill(field, value)
		}
	}
	return p
}

func parseLabelLine(line string) (profile.Field, string, bool) {
	m := labelLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	field, ok := profile.FieldForLabel(m[1])
	if !ok {
		return "", "", false
	}
	value := strings.TrimSpace(strings.Trim(m[2], "*_"))
	if profile.IsPlaceholder(value) {
		return "", "", false
	}
	return field, value, true
}

func countLabeled(block string) int {
	n := 0
	for _, line := range strings.Split(block, "\n") {
		if _, _, ok := parseLabelLine(line); ok {
			n++
		}
	}
	return n
}

// separatorIndex returns the byte offset of the last "---" line, the divider
// the assistant puts between its recap and the next question, or -1.
func separatorIndex(content string) int {
	offset := 0
	last := -1
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.TrimSpace(line) == "---" {
			last = offset
		}
		offset += len(line)
	}
	return last
}
