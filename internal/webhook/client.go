// Package webhook delivers completed leads to the external automation
// endpoint that handles dealer outreach.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// ErrNoEndpoint is returned when no webhook URL is configured.
var ErrNoEndpoint = errors.New("webhook endpoint not configured")

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.StatusCode, e.Body)
}

// Form types carried in Payload.FormType.
const (
	FormVehicleConsultation = "vehicle-consultation"
	FormContact             = "contact"
)

// Payload is the JSON document posted for each lead.
type Payload struct {
	Message            string                `json:"message"`
	Response           string                `json:"response"`
	Timestamp          time.Time             `json:"timestamp"`
	ConversationID     string                `json:"conversationId"`
	Email              string                `json:"email"`
	FullHistory        transcript.Transcript `json:"fullHistory"`
	EmailDealerSubject string                `json:"emailDealerSubject"`
	EmailDealerBody    string                `json:"emailDealerBody"`
	FormType           string                `json:"formType,omitempty"`
	VehicleData        map[string]string     `json:"vehicleData,omitempty"`
	ContactData        map[string]string     `json:"contactData,omitempty"`
	Language           string                `json:"language,omitempty"`
}

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 512

type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// Deliver posts the payload once. There is no retry: a failure is returned
// to the caller, which decides whether to resubmit.
func (c *Client) Deliver(ctx context.Context, p Payload) error {
	if !c.Configured() {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("lead delivered",
		"conversation_id", p.ConversationID,
		"form_type", p.FormType,
		"status", resp.StatusCode,
	)
	return nil
}
