package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// Subjects published and consumed by autobroker.
const (
	SubjectLeadDelivered         = "autobroker.lead.delivered"
	SubjectLeadFailed            = "autobroker.lead.failed"
	SubjectConversationCompleted = "autobroker.conversation.completed"
)

// LeadEvent is published after every delivery attempt.
type LeadEvent struct {
	LeadID         string    `json:"lead_id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	FormType       string    `json:"form_type,omitempty"`
	Language       string    `json:"language"`
	Brand          string    `json:"brand,omitempty"`
	Model          string    `json:"model,omitempty"`
	Subject        string    `json:"subject"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ConversationCompletedEvent carries a finished transcript from another
// front end that wants the lead pipeline to run on it.
type ConversationCompletedEvent struct {
	ConversationID string                `json:"conversation_id"`
	Language       string                `json:"language"`
	Extended       bool                  `json:"extended,omitempty"`
	History        transcript.Transcript `json:"history"`
}
