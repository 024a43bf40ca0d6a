// Package slack posts lead notifications to the sales channel.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// LeadSummary is what the sales channel sees for one lead.
type LeadSummary struct {
	LeadID         string
	ConversationID string
	FormType       string
	Language       profile.Language
	Subject        string
	Profile        profile.VehicleProfile
	Delivered      bool
	Error          string
}

// PostLeadSummary posts a lead to the channel and returns the message ts.
// A failed delivery gets its error as a threaded reply.
func (p *Poster) PostLeadSummary(ctx context.Context, s LeadSummary) (string, error) {
	text := formatLeadMessage(s)

	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "Conversation " + s.ConversationID,
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	p.logger.Info("posted lead to slack", "ts", ts, "conversation_id", s.ConversationID)

	if !s.Delivered && s.Error != "" {
		if err := p.PostThread(ctx, ts, "Delivery failed: "+s.Error); err != nil {
			p.logger.Warn("slack thread post failed", "error", err)
		}
	}
	return ts, nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	_, err := p.post(ctx, map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	return err
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatLeadMessage(s LeadSummary) string {
	var sb strings.Builder

	status := ":white_check_mark: delivered"
	if !s.Delivered {
		status = ":x: delivery failed"
	}
	kind := "conversation"
	if s.FormType != "" {
		kind = s.FormType + " form"
	}
	fmt.Fprintf(&sb, "*New lead* (%s, %s) %s\n", kind, s.Language, status)
	fmt.Fprintf(&sb, "*Subject:* %s\n", s.Subject)
	if s.LeadID != "" {
		fmt.Fprintf(&sb, "*Lead:* %s\n", s.LeadID)
	}

	fields := s.Profile.Fields()
	if len(fields) == 0 {
		sb.WriteString("\n_No buyer details extracted._")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "• %s: %s\n", profile.Label(f, profile.English), s.Profile.Get(f))
	}
	return sb.String()
}
