package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB is the embedded lead store used for local runs and tests.
type SQLiteDB struct {
	pool *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite wants a single writer
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteDB{pool: pool}, nil
}

// Close closes the database handle
func (s *SQLiteDB) Close() {
	if s.pool != nil {
		_ = s.pool.Close()
	}
}

// EnsureSchema creates the leads table if it does not exist
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create leads table: %w", err)
	}
	return nil
}

// GetLeadByURL retrieves a lead by its profile URL
func (s *SQLiteDB) GetLeadByURL(ctx context.Context, url string) (*Lead, error) {
	var (
		l                    Lead
		id                   string
		scrapedAt, createdAt string
	)
	err := s.pool.QueryRowContext(ctx,
		`SELECT id, linkedin_url, full_name, headline, about_section, experience_text,
		        message_1_draft, status, last_scraped_at, created_at
		 FROM leads WHERE linkedin_url = ?`,
		url,
	).Scan(&id, &l.LinkedInURL, &l.FullName, &l.Headline, &l.AboutSection, &l.ExperienceText,
		&l.Message1Draft, &l.Status, &scrapedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse lead id %q: %w", id, err)
	}
	if l.LastScrapedAt, err = time.Parse(time.RFC3339Nano, scrapedAt); err != nil {
		return nil, fmt.Errorf("failed to parse last_scraped_at: %w", err)
	}
	if l.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &l, nil
}

// LeadStatus reports whether a lead exists for url and its status. It reads only the
// status column so rows with unreadable or NULL columns still count as present.
func (s *SQLiteDB) LeadStatus(ctx context.Context, url string) (bool, string, error) {
	var status string
	err := s.pool.QueryRowContext(ctx,
		`SELECT COALESCE(status, '') FROM leads WHERE linkedin_url = ? LIMIT 1`,
		url,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to get lead status: %w", err)
	}
	return true, status, nil
}

// InsertLead creates a new lead; a conflicting linkedin_url yields ErrDuplicateLead
func (s *SQLiteDB) InsertLead(ctx context.Context, lead *Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	res, err := s.pool.ExecContext(ctx,
		`INSERT INTO leads (id, linkedin_url, full_name, headline, about_section, experience_text,
		                    message_1_draft, status, last_scraped_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (linkedin_url) DO NOTHING`,
		lead.ID.String(), lead.LinkedInURL, lead.FullName, lead.Headline, lead.AboutSection, lead.ExperienceText,
		lead.Message1Draft, lead.Status,
		lead.LastScrapedAt.UTC().Format(time.RFC3339Nano), lead.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateLead, lead.LinkedInURL)
	}
	return nil
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	linkedin_url    TEXT NOT NULL UNIQUE,
	full_name       TEXT NOT NULL DEFAULT '',
	headline        TEXT NOT NULL DEFAULT '',
	about_section   TEXT NOT NULL DEFAULT '',
	experience_text TEXT NOT NULL DEFAULT '',
	message_1_draft TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	last_scraped_at TEXT NOT NULL,
	created_at      TEXT NOT NULL
)`
