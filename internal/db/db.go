// Package db provides lead storage on PostgreSQL (pgx) and SQLite (modernc).
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the leads table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create leads table: %w", err)
	}
	return nil
}

// GetLeadByURL retrieves a lead by its profile URL
func (db *DB) GetLeadByURL(ctx context.Context, url string) (*Lead, error) {
	var l Lead
	err := db.pool.QueryRow(ctx,
		`SELECT id, linkedin_url, full_name, headline, about_section, experience_text,
		        message_1_draft, status, last_scraped_at, created_at
		 FROM leads WHERE linkedin_url = $1`,
		url,
	).Scan(&l.ID, &l.LinkedInURL, &l.FullName, &l.Headline, &l.AboutSection, &l.ExperienceText,
		&l.Message1Draft, &l.Status, &l.LastScrapedAt, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}

// LeadStatus reports whether a lead exists for url and its status. It reads only the
// status column so rows with unreadable or NULL columns still count as present.
func (db *DB) LeadStatus(ctx context.Context, url string) (bool, string, error) {
	var status string
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(status, '') FROM leads WHERE linkedin_url = $1 LIMIT 1`,
		url,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to get lead status: %w", err)
	}
	return true, status, nil
}

// InsertLead creates a new lead. The unique linkedin_url is the backstop
// against duplicate inserts the duplicate filter missed.
func (db *DB) InsertLead(ctx context.Context, lead *Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO leads (id, linkedin_url, full_name, headline, about_section, experience_text,
		                    message_1_draft, status, last_scraped_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (linkedin_url) DO NOTHING`,
		lead.ID, lead.LinkedInURL, lead.FullName, lead.Headline, lead.AboutSection, lead.ExperienceText,
		lead.Message1Draft, lead.Status, lead.LastScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateLead, lead.LinkedInURL)
	}
	return nil
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS leads (
	id              UUID PRIMARY KEY,
	linkedin_url    TEXT NOT NULL UNIQUE,
	full_name       TEXT NOT NULL DEFAULT '',
	headline        TEXT NOT NULL DEFAULT '',
	about_section   TEXT NOT NULL DEFAULT '',
	experience_text TEXT NOT NULL DEFAULT '',
	message_1_draft TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	last_scraped_at TIMESTAMPTZ NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
