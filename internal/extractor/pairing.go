package extractor

import (
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// pairingStrategy classifies each assistant question by keyword and takes the
// user's reply as the answer. The first answer per field wins, so a question
// asked again later doesn't replace the original reply.
func pairingStrategy(t transcript.Transcript, opts Options, _ profile.VehicleProfile) profile.VehicleProfile {
	p := profile.New()
	seen := make(map[profile.Field]bool)

	for _, pair := range t.Pairs() {
		if profile.IsClosing(pair.Question.Content) || !IsAnswer(pair.Answer.Content) {
			continue
		}
		field, ok := profile.Classify(questionText(pair.Question.Content), opts.Language)
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		record(&p, field, strings.TrimSpace(pair.Answer.Content), opts.Language)
	}
	return p
}

// questionText strips the running recap and suggestion lines from an
// assistant turn, leaving the question itself.
func questionText(content string) string {
	if idx := separatorIndex(content); idx >= 0 {
		content = content[idx:]
	}
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if isRecapLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isRecapLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "---" || strings.HasPrefix(trimmed, "✅") || strings.HasPrefix(trimmed, "📋") {
		return true
	}
	m := labelLine.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if profile.Fold(m[1]) == "suggestions" {
		return true
	}
	_, known := profile.FieldForLabel(m[1])
	return known
}
