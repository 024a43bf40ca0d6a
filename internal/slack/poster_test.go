package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProfile() profile.VehicleProfile {
	p := profile.New()
	p.Set(profile.Brand, "Honda")
	p.Set(profile.Model, "Civic")
	p.Set(profile.City, "Laval")
	return p
}

func TestFormatLeadMessage_WithProfile(t *testing.T) {
	msg := formatLeadMessage(LeadSummary{
		LeadID:    "lead-1",
		Language:  profile.French,
		Subject:   "Demande de soumission - 2026 Honda Civic",
		Profile:   testProfile(),
		Delivered: true,
	})

	checks := []string{
		"conversation, fr",
		"delivered",
		"Demande de soumission - 2026 Honda Civic",
		"lead-1",
		"Honda",
		"Civic",
		"Laval",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q", check)
		}
	}
}

func TestFormatLeadMessage_Empty(t *testing.T) {
	msg := formatLeadMessage(LeadSummary{FormType: "contact", Language: profile.English, Profile: profile.New()})

	if !strings.Contains(msg, "No buyer details") {
		t.Errorf("expected empty-profile note, got %q", msg)
	}
	if !strings.Contains(msg, "contact form") {
		t.Errorf("expected form type in message, got %q", msg)
	}
	if !strings.Contains(msg, "delivery failed") {
		t.Errorf("expected failed status, got %q", msg)
	}
}

func TestPostLeadSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if _, ok := payload["thread_ts"]; ok {
			t.Error("delivered lead should not post a thread reply")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostLeadSummary(context.Background(), LeadSummary{
		ConversationID: "conv_1",
		Language:       profile.French,
		Subject:        "s",
		Profile:        testProfile(),
		Delivered:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestPostLeadSummary_FailureThreadsError(t *testing.T) {
	var (
		mu      sync.Mutex
		threads []map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)
		if _, ok := payload["thread_ts"]; ok {
			mu.Lock()
			threads = append(threads, payload)
			mu.Unlock()
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "111.222"})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.PostLeadSummary(context.Background(), LeadSummary{
		ConversationID: "conv_2",
		Language:       profile.English,
		Profile:        testProfile(),
		Error:          "webhook returned 502: bad gateway",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread reply, got %d", len(threads))
	}
	if threads[0]["thread_ts"] != "111.222" {
		t.Errorf("expected thread_ts 111.222, got %v", threads[0]["thread_ts"])
	}
	if !strings.Contains(threads[0]["text"].(string), "502") {
		t.Errorf("expected error in thread text, got %v", threads[0]["text"])
	}
}

func TestPostLeadSummary_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.PostLeadSummary(context.Background(), LeadSummary{Profile: profile.New()})
	if err == nil {
		t.Fatal("expected error for slack error response")
	}
	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected channel_not_found in error, got %v", err)
	}
}
