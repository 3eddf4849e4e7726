package leads

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/extract"
)

type fakeStore struct {
	leads     map[string]*db.Lead
	lookupErr error
	insertErr error
	inserted  []*db.Lead
}

func (f *fakeStore) LeadStatus(_ context.Context, url string) (bool, string, error) {
	if f.lookupErr != nil {
		return false, "", f.lookupErr
	}
	lead, ok := f.leads[url]
	if !ok {
		return false, "", nil
	}
	return true, lead.Status, nil
}

func (f *fakeStore) InsertLead(_ context.Context, lead *db.Lead) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, lead)
	return nil
}

func TestFilter_Exists(t *testing.T) {
	store := &fakeStore{leads: map[string]*db.Lead{
		"p1": {LinkedInURL: "p1", Status: db.StatusScraped},
		"p2": {LinkedInURL: "p2", Status: "CONTACTED"},
	}}
	f := NewFilter(store, nil)

	tests := []struct {
		id         string
		wantFound  bool
		wantStatus string
	}{
		{"p1", true, db.StatusScraped},
		{"p2", true, "CONTACTED"},
		{"p3", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			found, status := f.Exists(context.Background(), tt.id)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestFilter_StoreErrorTreatsAsNew(t *testing.T) {
	f := NewFilter(&fakeStore{lookupErr: errors.New("connection reset")}, nil)

	found, status := f.Exists(context.Background(), "p1")

	assert.False(t, found)
	assert.Empty(t, status)
}

func TestGateway_Save(t *testing.T) {
	store := &fakeStore{}
	g := NewGateway(store, nil)
	g.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.FixedZone("EST", -5*3600)) }

	rec := extract.Record{
		Identifier: "p1",
		FullName:   "Ada Lovelace",
		Headline:   "Programmer",
		About:      "About me",
		Experience: "Babbage",
	}

	require.NoError(t, g.Save(context.Background(), "p1", rec, "Hi Ada"))
	require.Len(t, store.inserted, 1)

	lead := store.inserted[0]
	assert.Equal(t, "p1", lead.LinkedInURL)
	assert.Equal(t, "Ada Lovelace", lead.FullName)
	assert.Equal(t, "Programmer", lead.Headline)
	assert.Equal(t, "About me", lead.AboutSection)
	assert.Equal(t, "Babbage", lead.ExperienceText)
	assert.Equal(t, "Hi Ada", lead.Message1Draft)
	assert.Equal(t, db.StatusScraped, lead.Status)
	assert.Equal(t, time.UTC, lead.LastScrapedAt.Location())
	assert.Equal(t, 15, lead.LastScrapedAt.Hour())
	assert.NotEqual(t, uuid.Nil, lead.ID)
}

func TestGateway_SaveError(t *testing.T) {
	g := NewGateway(&fakeStore{insertErr: db.ErrDuplicateLead}, nil)

	err := g.Save(context.Background(), "p1", extract.NewRecord("p1"), "Hi there")

	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrDuplicateLead))
	assert.Contains(t, err.Error(), "failed to save lead p1")
}

func TestFilterAndGateway_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	f := NewFilter(store, nil)
	g := NewGateway(store, nil)

	found, _ := f.Exists(ctx, "https://www.linkedin.com/in/ada")
	require.False(t, found)

	rec := extract.NewRecord("https://www.linkedin.com/in/ada")
	require.NoError(t, g.Save(ctx, rec.Identifier, rec, "Hi there,"))

	found, status := f.Exists(ctx, rec.Identifier)
	assert.True(t, found)
	assert.Equal(t, db.StatusScraped, status)

	err = g.Save(ctx, rec.Identifier, rec, "Hi there,")
	assert.ErrorIs(t, err, db.ErrDuplicateLead)
}

func TestFilter_ExistingRowWithNullColumnsIsSkipped(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leads.db")

	// A table created by another tool: nullable columns and free-form timestamps.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `CREATE TABLE leads (
		id TEXT, linkedin_url TEXT UNIQUE, full_name TEXT, headline TEXT,
		about_section TEXT, experience_text TEXT, message_1_draft TEXT,
		status TEXT, last_scraped_at TEXT, created_at TEXT)`)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx,
		`INSERT INTO leads (id, linkedin_url, full_name, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		"1", "https://www.linkedin.com/in/ada", "Ada Lovelace", db.StatusScraped, "2024-01-02 03:04:05")
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx,
		`INSERT INTO leads (id, linkedin_url) VALUES (?, ?)`, "2", "https://www.linkedin.com/in/grace")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	store, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	f := NewFilter(store, nil)

	found, status := f.Exists(ctx, "https://www.linkedin.com/in/ada")
	assert.True(t, found)
	assert.Equal(t, db.StatusScraped, status)

	found, status = f.Exists(ctx, "https://www.linkedin.com/in/grace")
	assert.True(t, found, "a row with a NULL status still exists")
	assert.Empty(t, status)

	found, _ = f.Exists(ctx, "https://www.linkedin.com/in/nobody")
	assert.False(t, found)
}
