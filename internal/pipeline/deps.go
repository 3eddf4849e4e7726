package pipeline

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/lead-harvester/internal/diagnostics"
	"github.com/jonathan/lead-harvester/internal/draft"
	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/humanize"
)

// Page is the browser surface the orchestrator drives for one item.
type Page interface {
	humanize.Scroller
	humanize.Pointer
	diagnostics.Source
	Navigate(ctx context.Context, url string) error
	// Err reports a session-fatal condition such as a crashed browser.
	Err() error
}

// Humanizer shapes every wait and interaction with randomized timing.
type Humanizer interface {
	Pause(ctx context.Context, min, max time.Duration)
	Scroll(ctx context.Context, s humanize.Scroller, maxOffset int) error
	MoveAndClick(ctx context.Context, p humanize.Pointer, selector string, maxRetries int) bool
	Duration(r humanize.Range) time.Duration
}

// DuplicateFilter reports whether an identifier was already recorded.
type DuplicateFilter interface {
	Exists(ctx context.Context, identifier string) (bool, string)
}

// Extractor reads a structured record from the loaded page.
type Extractor interface {
	Extract(ctx context.Context, src extract.Source, identifier string) (extract.Record, error)
}

// Persister stores a completed record.
type Persister interface {
	Save(ctx context.Context, identifier string, rec extract.Record, draftText string) error
}

// Snapshotter captures diagnostic artifacts for a page.
type Snapshotter interface {
	Capture(ctx context.Context, src diagnostics.Source, action string) diagnostics.Snapshot
}

// Config holds the batch pacing and limits.
type Config struct {
	DailyLimit     int
	LoadWait       humanize.Range // after navigation, standing in for load uncertainty
	SettleWait     humanize.Range // after the lazy-load scroll
	ScrollOffset   int
	ExpandSelector string // "see more" control; empty disables expansion
	ClickRetries   int
	Cooldown       humanize.Range // after each successful item
	// NavigationInterval is the minimum spacing between navigations, failed items included.
	NavigationInterval time.Duration
}

// DefaultExpandSelector targets the about section's "see more" button.
const DefaultExpandSelector = "section:has(#about) button.inline-show-more-text__button"

// DefaultConfig returns the production pacing.
func DefaultConfig() Config {
	return Config{
		DailyLimit:         20,
		LoadWait:           humanize.Seconds(4, 7),
		SettleWait:         humanize.Seconds(2, 4),
		ScrollOffset:       800,
		ExpandSelector:     DefaultExpandSelector,
		ClickRetries:       3,
		Cooldown:           humanize.Seconds(60, 180),
		NavigationInterval: 10 * time.Second,
	}
}

func (c Config) limiter() *rate.Limiter {
	if c.NavigationInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.NavigationInterval), 1)
}

// Deps are the collaborators of one run. Drafter and Snapshots are optional.
type Deps struct {
	Page       Page
	Humanizer  Humanizer
	Filter     DuplicateFilter
	Extractor  Extractor
	Drafter    draft.Drafter
	Persister  Persister
	Snapshots  Snapshotter
	Sleep      humanize.SleepFunc
	OnProgress ProgressCallback
	Out        io.Writer // operator status lines
	Logger     *zap.Logger
}
