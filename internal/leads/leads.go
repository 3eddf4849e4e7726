// Package leads implements the duplicate filter and the persistence gateway over the lead store.
package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/extract"
)

// Lookup is the existence check consumed by the Filter.
type Lookup interface {
	LeadStatus(ctx context.Context, url string) (found bool, status string, err error)
}

// Inserter is the write consumed by the Gateway.
type Inserter interface {
	InsertLead(ctx context.Context, lead *db.Lead) error
}

// Filter reports whether an identifier has already been recorded.
type Filter struct {
	store Lookup
	log   *zap.Logger
}

// NewFilter creates a Filter over store.
func NewFilter(store Lookup, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{store: store, log: logger.Named("dedup")}
}

// Exists returns true and the stored status when identifier is already in the store.
// Any store error degrades to (false, "") so the batch keeps moving; the unique key on
// linkedin_url still rejects a second insert.
func (f *Filter) Exists(ctx context.Context, identifier string) (bool, string) {
	found, status, err := f.store.LeadStatus(ctx, identifier)
	if err != nil {
		f.log.Warn("duplicate check failed, treating as new",
			zap.String("identifier", identifier),
			zap.Error(err))
		return false, ""
	}
	return found, status
}

// Gateway writes completed records to the store.
type Gateway struct {
	store Inserter
	now   func() time.Time
	log   *zap.Logger
}

// NewGateway creates a Gateway over store.
func NewGateway(store Inserter, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, now: time.Now, log: logger.Named("persist")}
}

// Save writes one lead with status SCRAPED. A lead that already exists yields an error
// wrapping db.ErrDuplicateLead.
func (g *Gateway) Save(ctx context.Context, identifier string, rec extract.Record, draftText string) error {
	lead := &db.Lead{
		ID:             uuid.New(),
		LinkedInURL:    identifier,
		FullName:       rec.FullName,
		Headline:       rec.Headline,
		AboutSection:   rec.About,
		ExperienceText: rec.Experience,
		Message1Draft:  draftText,
		Status:         db.StatusScraped,
		LastScrapedAt:  g.now().UTC(),
	}
	if err := g.store.InsertLead(ctx, lead); err != nil {
		return fmt.Errorf("failed to save lead %s: %w", identifier, err)
	}
	g.log.Debug("lead saved", zap.String("identifier", identifier), zap.String("id", lead.ID.String()))
	return nil
}
