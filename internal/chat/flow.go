package chat

import (
	"github.com/MikeSquared-Agency/autobroker/internal/extractor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

// Stage is the question the conversation is waiting on: a field name, or
// one of the two terminal stages.
type Stage string

const (
	StageConfirmation Stage = "confirmation"
	StageDone         Stage = "done"
)

// Flow tracks progress through the question sequence. Positions past the
// last field are the confirmation step and then done.
type Flow struct {
	Sequence profile.Sequence `json:"sequence"`
	Position int              `json:"position"`
}

func NewFlow(seq profile.Sequence) Flow {
	return Flow{Sequence: seq}
}

// Stage returns the current stage.
func (f Flow) Stage() Stage {
	switch {
	case f.Position < len(f.Sequence):
		return Stage(f.Sequence[f.Position])
	case f.Position == len(f.Sequence):
		return StageConfirmation
	default:
		return StageDone
	}
}

// Expected returns the field the next answer belongs to.
func (f Flow) Expected() (profile.Field, bool) {
	if f.Position < len(f.Sequence) {
		return f.Sequence[f.Position], true
	}
	return "", false
}

// Answered is the number of questions answered so far.
func (f Flow) Answered() int {
	return min(f.Position, len(f.Sequence))
}

func (f Flow) Done() bool {
	return f.Stage() == StageDone
}

// Advance applies a user message. A valid answer moves to the next question;
// at the confirmation step only an affirmative answer finishes the flow. It
// reports whether the stage changed.
func (f *Flow) Advance(answer string) bool {
	switch f.Stage() {
	case StageDone:
		return false
	case StageConfirmation:
		if !profile.IsYes(answer) {
			return false
		}
	default:
		if !extractor.IsAnswer(answer) {
			return false
		}
	}
	f.Position++
	return true
}

// Finish moves straight to done. The assistant's closing message ends the
// conversation even if the flow lost track of the questions.
func (f *Flow) Finish() {
	f.Position = len(f.Sequence) + 1
}
