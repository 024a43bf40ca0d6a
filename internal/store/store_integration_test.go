//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_WriteAndUpdateLead(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	convID := "integration-test-" + uuid.New().String()[:8]

	id, err := s.WriteLead(ctx, Lead{
		ConversationID: convID,
		Language:       "fr",
		Profile:        map[string]string{"brand": "Toyota", "model": "RAV4"},
		Subject:        "Demande de soumission - 2026 Toyota RAV4",
		HTMLBody:       "<p>body</p>",
		Transcript: transcript.Transcript{
			{Role: transcript.RoleUser, Content: "Toyota"},
			{Role: transcript.RoleAssistant, Content: "Neuf ou usagé ?"},
		},
	})
	if err != nil {
		t.Fatalf("WriteLead failed: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil lead ID")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if lead.ConversationID != convID {
		t.Errorf("expected conversation %q, got %q", convID, lead.ConversationID)
	}
	if lead.Profile["brand"] != "Toyota" {
		t.Errorf("expected brand Toyota, got %q", lead.Profile["brand"])
	}
	if len(lead.Transcript) != 2 {
		t.Errorf("expected 2 turns, got %d", len(lead.Transcript))
	}
	if lead.DeliveryStatus != "pending" {
		t.Errorf("expected delivery_status pending, got %q", lead.DeliveryStatus)
	}

	if err := s.UpdateDeliveryStatus(ctx, id, "failed", "webhook returned 500"); err != nil {
		t.Fatalf("UpdateDeliveryStatus failed: %v", err)
	}

	lead, err = s.GetLead(ctx, id)
	if err != nil {
		t.Fatalf("GetLead after update failed: %v", err)
	}
	if lead.DeliveryStatus != "failed" {
		t.Errorf("expected delivery_status failed, got %q", lead.DeliveryStatus)
	}
	if lead.DeliveryError != "webhook returned 500" {
		t.Errorf("expected delivery error, got %q", lead.DeliveryError)
	}

	recent, err := s.RecentLeads(ctx, 5)
	if err != nil {
		t.Fatalf("RecentLeads failed: %v", err)
	}
	if len(recent) == 0 {
		t.Error("expected at least one recent lead")
	}
}

func TestIntegration_GetLeadNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetLead(context.Background(), uuid.New())
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
