package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and makes sure the leads table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure lead schema: %w", err)
	}
	return s, nil
}

// Pool exposes the connection pool to maintenance jobs such as lead dedup.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			id              UUID PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			form_type       TEXT NOT NULL DEFAULT '',
			language        TEXT NOT NULL,
			profile         JSONB NOT NULL DEFAULT '{}',
			email_subject   TEXT NOT NULL,
			email_body      TEXT NOT NULL,
			transcript      JSONB NOT NULL DEFAULT '[]',
			delivery_status TEXT NOT NULL DEFAULT 'pending',
			delivery_error  TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		ALTER TABLE leads ADD COLUMN IF NOT EXISTS deduped_at TIMESTAMPTZ;
		ALTER TABLE leads ADD COLUMN IF NOT EXISTS dedup_survivor_id UUID;
		CREATE INDEX IF NOT EXISTS idx_leads_conversation ON leads(conversation_id);
		CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(delivery_status);
		CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at);
	`)
	return err
}
