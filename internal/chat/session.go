package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// Delivery states recorded on a session.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Session is one buyer conversation. History is the retained window sent to
// the assistant; Log keeps every turn for extraction.
type Session struct {
	ID        string                `json:"id"`
	Language  profile.Language      `json:"language"`
	Extended  bool                  `json:"extended"`
	History   transcript.Transcript `json:"history"`
	Log       transcript.Transcript `json:"log"`
	Flow      Flow                  `json:"flow"`
	Completed bool                  `json:"completed"`
	Delivery  string                `json:"delivery,omitempty"`
	LeadID    string                `json:"leadId,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func newSession(lang profile.Language, extended bool, now time.Time) *Session {
	return &Session{
		ID:        NewConversationID(),
		Language:  lang,
		Extended:  extended,
		Flow:      NewFlow(profile.SequenceFor(extended)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewConversationID returns a fresh "conv_<uuid>" identifier.
func NewConversationID() string {
	return "conv_" + uuid.NewString()
}

func (s *Session) Sequence() profile.Sequence {
	return profile.SequenceFor(s.Extended)
}

// Stage is the current flow stage.
func (s *Session) Stage() Stage {
	return s.Flow.Stage()
}

// append records a turn in the log and in the retained history, applying
// the retention policy on every call.
func (s *Session) append(turn transcript.Turn, policy transcript.Policy) {
	s.Log = append(s.Log, turn)
	s.History = policy.Apply(append(s.History, turn))
	s.UpdatedAt = turn.Timestamp
}

// UserTurnCount is the number of user messages received.
func (s *Session) UserTurnCount() int {
	return len(s.Log.UserTurns())
}

func (s *Session) clone() *Session {
	c := *s
	c.History = s.History.Clone()
	c.Log = s.Log.Clone()
	c.Flow.Sequence = append(profile.Sequence(nil), s.Flow.Sequence...)
	return &c
}
