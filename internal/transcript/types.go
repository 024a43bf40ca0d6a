package transcript

import (
	"strings"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation. Turns are never edited after
// they are appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Transcript is the ordered list of turns for one conversation. Alternation of
// roles is expected but not enforced.
type Transcript []Turn

// Pair is an assistant question followed directly by the user's reply.
type Pair struct {
	Question Turn
	Answer   Turn
	// Index of the answer turn in the transcript.
	Index int
}

func (t Transcript) UserTurns() []Turn {
	return t.byRole(RoleUser)
}

func (t Transcript) AssistantTurns() []Turn {
	return t.byRole(RoleAssistant)
}

func (t Transcript) byRole(role Role) []Turn {
	var out []Turn
	for _, turn := range t {
		if turn.Role == role {
			out = append(out, turn)
		}
	}
	return out
}

// Last returns the final turn, or false for an empty transcript.
func (t Transcript) Last() (Turn, bool) {
	if len(t) == 0 {
		return Turn{}, false
	}
	return t[len(t)-1], true
}

// Pairs returns every adjacent (assistant, user) pair in order.
func (t Transcript) Pairs() []Pair {
	var out []Pair
	for i := 1; i < len(t); i++ {
		if t[i-1].Role == RoleAssistant && t[i].Role == RoleUser {
			out = append(out, Pair{Question: t[i-1], Answer: t[i], Index: i})
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Render flattens turns into the "USER: ... / ASSISTANT: ..." form sent to the
// assistant as conversation context.
func Render(turns []Turn) string {
	var sb strings.Builder
	for i, turn := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.ToUpper(string(turn.Role)))
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
	}
	return sb.String()
}
