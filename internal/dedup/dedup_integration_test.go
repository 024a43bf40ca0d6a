//go:build integration

package dedup

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/store"
)

func TestIntegration_DeduplicateLeads(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	s, err := store.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(s.Close)

	// Unique model so other rows in a shared database never match.
	model := "Dedup-" + uuid.NewString()[:8]
	write := func(email, phone string) uuid.UUID {
		id, err := s.WriteLead(ctx, store.Lead{
			ConversationID: "dedup-test",
			Language:       "fr",
			Profile:        map[string]string{"brand": "Kia", "model": model, "email": email, "phone": phone},
			Subject:        "subject",
			HTMLBody:       "<p>body</p>",
		})
		if err != nil {
			t.Fatalf("WriteLead: %v", err)
		}
		return id
	}
	first := write("Buyer@Example.com", "")
	second := write("buyer@example.com", "514 555 0101")
	third := write("", "(514) 555-0101")
	other := write("someone@else.com", "")

	if err := s.UpdateDeliveryStatus(ctx, second, "delivered", ""); err != nil {
		t.Fatal(err)
	}

	d := New(s.Pool(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	dry, err := d.DeduplicateLeads(ctx, time.Hour, false)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	var detail *ClusterDetail
	for i := range dry.Details {
		if dry.Details[i].SurvivorID == second {
			detail = &dry.Details[i]
		}
	}
	if detail == nil || detail.Size != 3 {
		t.Fatalf("expected a cluster of 3 led by the delivered lead, got %+v", dry.Details)
	}
	if !slices.Contains(detail.DedupedIDs, first) || !slices.Contains(detail.DedupedIDs, third) || slices.Contains(detail.DedupedIDs, other) {
		t.Errorf("deduped ids = %v", detail.DedupedIDs)
	}

	if _, err := d.DeduplicateLeads(ctx, time.Hour, true); err != nil {
		t.Fatalf("execute: %v", err)
	}
	recent, err := s.RecentLeads(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range recent {
		if l.ID == first || l.ID == third {
			t.Errorf("deduped lead %v still listed", l.ID)
		}
	}
}
