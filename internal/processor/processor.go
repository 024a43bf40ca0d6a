// Package processor turns a finished conversation or form into a delivered
// lead: extraction, the dealer email, persistence, webhook delivery and the
// follow-up notifications.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/extractor"
	"github.com/MikeSquared-Agency/autobroker/internal/hermes"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/slack"
	"github.com/MikeSquared-Agency/autobroker/internal/store"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
	"github.com/MikeSquared-Agency/autobroker/internal/webhook"
)

// Delivery statuses written to the leads table.
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

type LeadStore interface {
	WriteLead(ctx context.Context, l store.Lead) (uuid.UUID, error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status, detail string) error
}

type Deliverer interface {
	Deliver(ctx context.Context, p webhook.Payload) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

type Notifier interface {
	PostLeadSummary(ctx context.Context, s slack.LeadSummary) (string, error)
}

// Completion is a finished conversation handed over by a driver.
type Completion struct {
	ConversationID string
	Language       profile.Language
	Sequence       profile.Sequence
	Transcript     transcript.Transcript
	// Truncated marks a transcript whose early turns were pruned.
	Truncated bool
	Known     profile.VehicleProfile
}

// Result describes one pipeline run. It is returned even when delivery
// fails so callers can report what was attempted.
type Result struct {
	LeadID    string
	Profile   profile.VehicleProfile
	Email     email.Document
	Payload   webhook.Payload
	Delivered bool
	Error     string
}

// Processor orchestrates the lead pipeline. The store, publisher and
// notifier are optional.
type Processor struct {
	extractor *extractor.Extractor
	emails    *email.Generator
	deliverer Deliverer
	store     LeadStore
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func New(ext *extractor.Extractor, emails *email.Generator, d Deliverer, logger *slog.Logger) *Processor {
	return &Processor{
		extractor: ext,
		emails:    emails,
		deliverer: d,
		logger:    logger,
		now:       time.Now,
	}
}

// WithStore enables lead persistence.
func (p *Processor) WithStore(s LeadStore) *Processor {
	p.store = s
	return p
}

// WithPublisher enables lead events on the bus.
func (p *Processor) WithPublisher(pub Publisher) *Processor {
	p.publisher = pub
	return p
}

// WithNotifier enables Slack lead summaries.
func (p *Processor) WithNotifier(n Notifier) *Processor {
	p.notifier = n
	return p
}

// Preview extracts the profile and renders the email without delivering
// anything.
func (p *Processor) Preview(c Completion) (profile.VehicleProfile, email.Document) {
	prof := p.extract(c)
	return prof, p.emails.Render(prof, c.Language)
}

// Process runs the full pipeline for a completed conversation. A delivery
// failure is returned as an error together with the populated Result.
func (p *Processor) Process(ctx context.Context, c Completion) (*Result, error) {
	prof, doc := p.Preview(c)

	payload := webhook.Payload{
		Timestamp:          p.now().UTC(),
		ConversationID:     c.ConversationID,
		Email:              prof.Get(profile.Email),
		FullHistory:        c.Transcript,
		EmailDealerSubject: doc.Subject,
		EmailDealerBody:    doc.HTMLBody,
		VehicleData:        prof.Map(),
		Language:           string(c.Language),
	}
	payload.Message, payload.Response = lastExchange(c.Transcript)

	p.logger.Info("processing completed conversation",
		"conversation_id", c.ConversationID,
		"language", string(c.Language),
		"turns", len(c.Transcript),
		"fields", prof.Len(),
	)
	return p.dispatch(ctx, prof, c.Language, doc, payload)
}

// HandleConversationCompleted is the NATS handler for transcripts finished
// by other front ends.
func (p *Processor) HandleConversationCompleted(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.ConversationCompletedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse conversation event", "subject", subject, "error", err)
		return
	}
	if len(evt.History) == 0 {
		p.logger.Warn("ignoring conversation event without history", "conversation_id", evt.ConversationID)
		return
	}
	if evt.ConversationID == "" {
		evt.ConversationID = "conv_" + uuid.NewString()
	}

	_, err := p.Process(ctx, Completion{
		ConversationID: evt.ConversationID,
		Language:       profile.ParseLanguage(evt.Language),
		Sequence:       profile.SequenceFor(evt.Extended),
		Transcript:     evt.History,
	})
	if err != nil {
		p.logger.Error("conversation event delivery failed", "conversation_id", evt.ConversationID, "error", err)
	}
}

func (p *Processor) extract(c Completion) profile.VehicleProfile {
	return p.extractor.Extract(c.Transcript, extractor.Options{
		Language:  c.Language,
		Sequence:  c.Sequence,
		Known:     c.Known,
		Truncated: c.Truncated,
	})
}

// dispatch persists, delivers and announces a lead.
func (p *Processor) dispatch(ctx context.Context, prof profile.VehicleProfile, lang profile.Language, doc email.Document, payload webhook.Payload) (*Result, error) {
	res := &Result{Profile: prof, Email: doc, Payload: payload}

	var leadID uuid.UUID
	if p.store != nil {
		id, err := p.store.WriteLead(ctx, store.Lead{
			ConversationID: payload.ConversationID,
			FormType:       payload.FormType,
			Language:       string(lang),
			Profile:        prof.Map(),
			Subject:        doc.Subject,
			HTMLBody:       doc.HTMLBody,
			Transcript:     payload.FullHistory,
		})
		if err != nil {
			p.logger.Error("failed to persist lead", "conversation_id", payload.ConversationID, "error", err)
		} else {
			leadID = id
			res.LeadID = id.String()
		}
	}

	deliverErr := p.deliverer.Deliver(ctx, payload)
	res.Delivered = deliverErr == nil
	if deliverErr != nil {
		res.Error = deliverErr.Error()
	}

	if leadID != uuid.Nil {
		status := StatusDelivered
		if deliverErr != nil {
			status = StatusFailed
		}
		if err := p.store.UpdateDeliveryStatus(ctx, leadID, status, res.Error); err != nil {
			p.logger.Error("failed to update lead status", "lead_id", res.LeadID, "error", err)
		}
	}

	p.publish(res, lang)
	p.notify(ctx, res, lang)

	if deliverErr != nil {
		p.logger.Warn("lead delivery failed", "conversation_id", payload.ConversationID, "error", deliverErr)
		return res, fmt.Errorf("deliver lead: %w", deliverErr)
	}
	p.logger.Info("lead processed", "conversation_id", payload.ConversationID, "lead_id", res.LeadID)
	return res, nil
}

func (p *Processor) publish(res *Result, lang profile.Language) {
	if p.publisher == nil {
		return
	}
	subject := hermes.SubjectLeadDelivered
	if !res.Delivered {
		subject = hermes.SubjectLeadFailed
	}
	evt := hermes.LeadEvent{
		LeadID:         res.LeadID,
		ConversationID: res.Payload.ConversationID,
		FormType:       res.Payload.FormType,
		Language:       string(lang),
		Brand:          res.Profile.Get(profile.Brand),
		Model:          res.Profile.Get(profile.Model),
		Subject:        res.Email.Subject,
		Error:          res.Error,
		Timestamp:      p.now().UTC(),
	}
	if err := p.publisher.Publish(subject, evt); err != nil {
		p.logger.Error("failed to publish lead event", "subject", subject, "error", err)
	}
}

func (p *Processor) notify(ctx context.Context, res *Result, lang profile.Language) {
	if p.notifier == nil {
		return
	}
	_, err := p.notifier.PostLeadSummary(ctx, slack.LeadSummary{
		LeadID:         res.LeadID,
		ConversationID: res.Payload.ConversationID,
		FormType:       res.Payload.FormType,
		Language:       lang,
		Subject:        res.Email.Subject,
		Profile:        res.Profile,
		Delivered:      res.Delivered,
		Error:          res.Error,
	})
	if err != nil {
		p.logger.Error("slack post failed", "error", err)
	}
}

// lastExchange returns the contents of the second-to-last and last turns.
func lastExchange(t transcript.Transcript) (message, response string) {
	if n := len(t); n >= 2 {
		return t[n-2].Content, t[n-1].Content
	} else if n == 1 {
		return "", t[0].Content
	}
	return "", ""
}
