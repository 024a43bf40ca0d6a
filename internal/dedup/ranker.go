package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errEmptyCluster = errors.New("empty cluster")

// LeadRecord holds the columns used to pick a survivor.
type LeadRecord struct {
	ID             uuid.UUID
	DeliveryStatus string
	Fields         int
	CreatedAt      time.Time
}

// Ranker picks the lead to keep from a cluster of duplicates.
type Ranker struct {
	pool *pgxpool.Pool
}

func NewRanker(pool *pgxpool.Pool) *Ranker {
	return &Ranker{pool: pool}
}

// RankLeads returns the survivor of a cluster of lead ids.
func (r *Ranker) RankLeads(ctx context.Context, ids []uuid.UUID) (uuid.UUID, error) {
	if len(ids) == 0 {
		return uuid.Nil, errEmptyCluster
	}
	if len(ids) == 1 {
		return ids[0], nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, delivery_status,
		       (SELECT count(*) FROM jsonb_object_keys(profile))::int,
		       created_at
		FROM leads
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetch leads: %w", err)
	}
	defer rows.Close()

	var records []LeadRecord
	for rows.Next() {
		var rec LeadRecord
		if err := rows.Scan(&rec.ID, &rec.DeliveryStatus, &rec.Fields, &rec.CreatedAt); err != nil {
			return uuid.Nil, fmt.Errorf("scan lead: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("rows error: %w", err)
	}
	if len(records) == 0 {
		return uuid.Nil, fmt.Errorf("no records found")
	}
	return bestLead(records).ID, nil
}

func bestLead(records []LeadRecord) LeadRecord {
	best := records[0]
	for _, rec := range records[1:] {
		if isLeadBetter(rec, best) {
			best = rec
		}
	}
	return best
}

// isLeadBetter orders by delivery status, then completeness, then age: the
// earliest lead is the one the dealer saw first.
func isLeadBetter(a, b LeadRecord) bool {
	if as, bs := deliveryPriority(a.DeliveryStatus), deliveryPriority(b.DeliveryStatus); as != bs {
		return as > bs
	}
	if a.Fields != b.Fields {
		return a.Fields > b.Fields
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func deliveryPriority(status string) int {
	switch status {
	case "delivered":
		return 3
	case "pending":
		return 2
	case "failed":
		return 1
	default:
		return 0
	}
}
