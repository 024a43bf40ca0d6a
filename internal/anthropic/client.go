// Package anthropic is the Messages API backend for the chat assistant.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	DefaultModel  = "claude-3-5-haiku-latest"
	apiVersion    = "2023-06-01"

	// replyMaxTokens bounds a single conversational turn.
	replyMaxTokens = 800
	maxBodyBytes   = 1 << 20
)

// APIError is a non-200 answer from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("anthropic api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("anthropic api %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Retryable reports rate limiting, overload and server errors.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	apiKey  string
	model   string
	apiURL  string
	client  *http.Client
	retries int
	backoff time.Duration
}

type Option func(*Client)

// WithBaseURL points the client at another endpoint, typically an httptest server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithRetries sets how many extra attempts a retryable failure gets.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		apiURL:  defaultAPIURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		retries: 2,
		backoff: time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return "anthropic" }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// systemBlock lets the long, unchanging persona prompt be cached between turns.
type systemBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	CacheControl *cacheControl `json:"cache_control,omitempty"`
}

type cacheControl struct {
	Type string `json:"type"`
}

type request struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    []systemBlock `json:"system,omitempty"`
	Messages  []Message     `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one Messages request and joins the text blocks of the reply.
// Retryable API errors are retried with linear backoff.
func (c *Client) Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	reqBody := request{Model: c.model, MaxTokens: maxTokens, Messages: messages}
	if system != "" {
		reqBody.System = []systemBlock{{Type: "text", Text: system, CacheControl: &cacheControl{Type: "ephemeral"}}}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			break
		}
	}
	return "", lastErr
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			apiErr.Type = errResp.Error.Type
			apiErr.Message = errResp.Error.Message
		}
		return "", apiErr
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var sb strings.Builder
	for _, b := range apiResp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("empty response content")
	}
	return text, nil
}

// Respond asks Sam for the next reply. The conversation is sent as one user
// message holding the rendered history.
func (c *Client) Respond(ctx context.Context, system, conversation string) (string, error) {
	return c.Complete(ctx, system, []Message{{Role: "user", Content: conversation}}, replyMaxTokens)
}
