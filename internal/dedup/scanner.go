package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DuplicatePair is two leads for the same vehicle from the same buyer.
type DuplicatePair struct {
	ID1    uuid.UUID
	ID2    uuid.UUID
	Reason string // "email" or "phone"
}

// Scanner finds duplicate lead pairs in Postgres.
type Scanner struct {
	pool *pgxpool.Pool
}

func NewScanner(pool *pgxpool.Pool) *Scanner {
	return &Scanner{pool: pool}
}

// FindLeadDuplicates pairs live leads that share brand and model (case
// insensitive) and either the buyer email or the phone digits, created no
// more than window apart.
func (s *Scanner) FindLeadDuplicates(ctx context.Context, window time.Duration) ([]DuplicatePair, error) {
	query := `
		SELECT a.id, b.id,
		       CASE WHEN lower(a.profile->>'email') = lower(b.profile->>'email') THEN 'email' ELSE 'phone' END
		FROM leads a
		JOIN leads b ON a.id < b.id
		WHERE a.deduped_at IS NULL AND b.deduped_at IS NULL
		  AND lower(a.profile->>'brand') = lower(b.profile->>'brand')
		  AND lower(a.profile->>'model') = lower(b.profile->>'model')
		  AND abs(extract(epoch FROM a.created_at - b.created_at)) <= $1
		  AND (
		        (coalesce(a.profile->>'email', '') <> '' AND lower(a.profile->>'email') = lower(b.profile->>'email'))
		     OR (regexp_replace(coalesce(a.profile->>'phone', ''), '\D', '', 'g') <> ''
		         AND regexp_replace(a.profile->>'phone', '\D', '', 'g') = regexp_replace(b.profile->>'phone', '\D', '', 'g'))
		  )
		ORDER BY a.created_at`

	rows, err := s.pool.Query(ctx, query, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("query lead duplicates: %w", err)
	}
	defer rows.Close()

	var pairs []DuplicatePair
	for rows.Next() {
		var pair DuplicatePair
		if err := rows.Scan(&pair.ID1, &pair.ID2, &pair.Reason); err != nil {
			return nil, fmt.Errorf("scan duplicate pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return pairs, nil
}
