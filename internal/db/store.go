package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateLead is returned when a lead with the same linkedin_url already exists.
var ErrDuplicateLead = errors.New("lead already exists")

// Store is the persistent lead store consumed by the duplicate filter and the persistence gateway.
type Store interface {
	// GetLeadByURL returns the lead for url, or nil when none exists
	GetLeadByURL(ctx context.Context, url string) (*Lead, error)
	// LeadStatus reports whether a lead exists for url, reading only its status
	LeadStatus(ctx context.Context, url string) (found bool, status string, err error)
	// InsertLead creates a lead; a conflicting linkedin_url yields ErrDuplicateLead
	InsertLead(ctx context.Context, lead *Lead) error
	// EnsureSchema creates the leads table if it does not exist
	EnsureSchema(ctx context.Context) error
	// Close releases the underlying connections
	Close()
}

// SQLiteScheme prefixes database URLs that select the embedded SQLite backend.
const SQLiteScheme = "sqlite://"

// Open connects to the store named by databaseURL.
// postgres:// and postgresql:// select PostgreSQL; sqlite://<path> selects SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Connect(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, SQLiteScheme):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, SQLiteScheme))
	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %s", redact(databaseURL))
	}
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "***"
	}
	return "***"
}
