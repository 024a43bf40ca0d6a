package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is one completed conversation or form submission and the dealer
// email generated for it.
type Lead struct {
	ID             uuid.UUID
	ConversationID string
	FormType       string
	Language       string
	Profile        map[string]string
	Subject        string
	HTMLBody       string
	Transcript     transcript.Transcript
	DeliveryStatus string
	DeliveryError  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WriteLead inserts a lead in the pending state and returns its id.
func (s *Store) WriteLead(ctx context.Context, l Lead) (uuid.UUID, error) {
	profileJSON, err := json.Marshal(l.Profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal profile: %w", err)
	}
	turns := l.Transcript
	if turns == nil {
		turns = transcript.Transcript{}
	}
	transcriptJSON, err := json.Marshal(turns)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal transcript: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO leads (id, conversation_id, form_type, language, profile, email_subject, email_body, transcript, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')`,
		id, l.ConversationID, l.FormType, l.Language, profileJSON, l.Subject, l.HTMLBody, transcriptJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert lead: %w", err)
	}
	return id, nil
}

// UpdateDeliveryStatus records the outcome of a webhook delivery.
func (s *Store) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status, detail string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET delivery_status = $1, delivery_error = $2, updated_at = now()
		WHERE id = $3`,
		status, detail, id,
	)
	return err
}

// GetLead fetches a lead by id.
func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, conversation_id, form_type, language, profile, email_subject, email_body,
		       transcript, delivery_status, delivery_error, created_at, updated_at
		FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// RecentLeads returns the newest leads first, leaving out leads merged into
// a duplicate survivor.
func (s *Store) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, form_type, language, profile, email_subject, email_body,
		       transcript, delivery_status, delivery_error, created_at, updated_at
		FROM leads WHERE deduped_at IS NULL
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		l              Lead
		profileJSON    []byte
		transcriptJSON []byte
	)
	err := row.Scan(&l.ID, &l.ConversationID, &l.FormType, &l.Language, &profileJSON,
		&l.Subject, &l.HTMLBody, &transcriptJSON, &l.DeliveryStatus, &l.DeliveryError,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	if err := json.Unmarshal(profileJSON, &l.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := json.Unmarshal(transcriptJSON, &l.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &l, nil
}
