// Package chat runs the conversation with Sam: session state, the question
// flow, the assistant round trip and the hand-off of completed sessions to
// the lead pipeline.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrSessionCompleted     = errors.New("session already completed")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrNotCompleted         = errors.New("session not completed")
)

// Assistant generates Sam's next message from the system prompt and the
// rendered conversation.
type Assistant interface {
	Respond(ctx context.Context, system, conversation string) (string, error)
}

// Pipeline processes a completed conversation into a delivered lead.
type Pipeline interface {
	Process(ctx context.Context, c processor.Completion) (*processor.Result, error)
}

// DeliveryOutcome reports what happened to the lead of a completed session.
type DeliveryOutcome struct {
	Status string `json:"status"`
	LeadID string `json:"leadId,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Reply is the result of one user message.
type Reply struct {
	Session   *Session         `json:"-"`
	Message   string           `json:"reply"`
	Stage     Stage            `json:"stage"`
	Completed bool             `json:"completed"`
	Delivery  *DeliveryOutcome `json:"delivery,omitempty"`
}

type Driver struct {
	store     SessionStore
	assistant Assistant
	pipeline  Pipeline
	policy    transcript.Policy
	logger    *slog.Logger
	now       func() time.Time
}

func NewDriver(store SessionStore, assistant Assistant, pipeline Pipeline, policy transcript.Policy, logger *slog.Logger) *Driver {
	return &Driver{
		store:     store,
		assistant: assistant,
		pipeline:  pipeline,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// Start opens a session and records Sam's welcome as its first turn.
func (d *Driver) Start(ctx context.Context, lang profile.Language, extended bool) (*Session, error) {
	s := newSession(lang, extended, d.now())
	s.append(d.turn(transcript.RoleAssistant, Welcome(lang)), d.policy)
	if err := d.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	d.logger.Info("session started", "conversation_id", s.ID, "language", string(lang), "extended", extended)
	return s, nil
}

// Get returns a session by id.
func (d *Driver) Get(ctx context.Context, id string) (*Session, error) {
	return d.store.Get(ctx, id)
}

// Send appends a user message, obtains Sam's reply and, when the reply
// closes the conversation, delivers the lead. If the assistant fails the
// apology is returned as the reply together with ErrAssistantUnavailable.
func (d *Driver) Send(ctx context.Context, id, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	s, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Completed {
		return nil, ErrSessionCompleted
	}

	firstAnswer := s.UserTurnCount() == 0 && s.Stage() == Stage(profile.Brand)
	s.append(d.turn(transcript.RoleUser, text), d.policy)
	s.Flow.Advance(text)

	var (
		message   string
		assistErr error
	)
	if brand, ok := MatchBrand(text); ok && firstAnswer {
		message = brandShortcut(brand, s.Sequence(), s.Language)
	} else {
		message, assistErr = d.assistant.Respond(ctx, SystemPrompt(s.Language, s.Sequence()), transcript.Render(s.History))
		if assistErr != nil {
			d.logger.Error("assistant request failed", "conversation_id", s.ID, "error", assistErr)
			message = Apology(s.Language)
		}
	}
	s.append(d.turn(transcript.RoleAssistant, message), d.policy)

	reply := &Reply{Session: s, Message: message}
	if assistErr == nil && profile.IsClosing(message) {
		s.Flow.Finish()
		s.Completed = true
		d.logger.Info("conversation completed", "conversation_id", s.ID, "turns", len(s.Log))
		reply.Delivery = d.deliver(ctx, s)
	}

	if err := d.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	reply.Stage = s.Stage()
	reply.Completed = s.Completed

	if assistErr != nil {
		return reply, fmt.Errorf("%w: %w", ErrAssistantUnavailable, assistErr)
	}
	return reply, nil
}

// Submit retries delivery for a completed session whose earlier attempt
// failed. A session already delivered is reported as such without a second
// delivery.
func (d *Driver) Submit(ctx context.Context, id string) (*DeliveryOutcome, error) {
	s, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Completed {
		return nil, ErrNotCompleted
	}
	if s.Delivery == DeliveryDelivered {
		return &DeliveryOutcome{Status: DeliveryDelivered, LeadID: s.LeadID}, nil
	}
	out := d.deliver(ctx, s)
	if err := d.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

// deliver hands the session log to the pipeline at most once. A failed
// delivery releases the marker so it can be retried.
func (d *Driver) deliver(ctx context.Context, s *Session) *DeliveryOutcome {
	claimed, err := d.store.MarkDelivered(ctx, s.ID)
	if err != nil {
		d.logger.Error("delivery guard failed", "conversation_id", s.ID, "error", err)
		s.Delivery = DeliveryFailed
		return &DeliveryOutcome{Status: DeliveryFailed, Error: err.Error()}
	}
	if !claimed {
		d.logger.Info("lead already delivered", "conversation_id", s.ID)
		return &DeliveryOutcome{Status: DeliveryDelivered, LeadID: s.LeadID}
	}

	s.Delivery = DeliveryPending
	res, err := d.pipeline.Process(ctx, processor.Completion{
		ConversationID: s.ID,
		Language:       s.Language,
		Sequence:       s.Sequence(),
		Transcript:     s.Log,
	})
	if res != nil {
		s.LeadID = res.LeadID
	}
	if err != nil {
		if rerr := d.store.ReleaseDelivered(ctx, s.ID); rerr != nil {
			d.logger.Error("failed to release delivery guard", "conversation_id", s.ID, "error", rerr)
		}
		s.Delivery = DeliveryFailed
		return &DeliveryOutcome{Status: DeliveryFailed, LeadID: s.LeadID, Error: err.Error()}
	}

	s.Delivery = DeliveryDelivered
	return &DeliveryOutcome{Status: DeliveryDelivered, LeadID: s.LeadID}
}

func (d *Driver) turn(role transcript.Role, content string) transcript.Turn {
	return transcript.Turn{Role: role, Content: content, Timestamp: d.now().UTC()}
}
