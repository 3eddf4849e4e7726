// Package pipeline provides the batch orchestration: dedup check, navigation,
// humanized waits, extraction, drafting, persistence and cooldown for each item.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/draft"
	"github.com/jonathan/lead-harvester/internal/humanize"
)

// Diagnostic snapshot labels.
const (
	ErrorAction           = "error_lead_processing"
	FailedScrapeActionFmt = "failed_scrape_%d"
	CriticalAction        = "critical_failure"
)

// Orchestrator runs a batch of items through a single browser session, one at a time.
type Orchestrator struct {
	cfg     Config
	deps    Deps
	limiter *rate.Limiter
	out     io.Writer
	log     *zap.Logger
}

// New validates deps and creates an Orchestrator.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Page == nil:
		return nil, fmt.Errorf("pipeline requires a page")
	case deps.Humanizer == nil:
		return nil, fmt.Errorf("pipeline requires a humanizer")
	case deps.Filter == nil:
		return nil, fmt.Errorf("pipeline requires a duplicate filter")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("pipeline requires an extractor")
	case deps.Persister == nil:
		return nil, fmt.Errorf("pipeline requires a persister")
	}
	if cfg.DailyLimit < 0 {
		return nil, fmt.Errorf("daily limit must be non-negative, got %d", cfg.DailyLimit)
	}
	if deps.Drafter == nil {
		deps.Drafter = draft.Template{}
	}
	if deps.Sleep == nil {
		deps.Sleep = humanize.SleepContext
	}

	o := &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		limiter: cfg.limiter(),
		out:     deps.Out,
		log:     deps.Logger,
	}
	if o.out == nil {
		o.out = io.Discard
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	o.log = o.log.Named("pipeline")
	return o, nil
}

// Run processes items in order until the list is exhausted or the daily limit is reached.
// Per-item failures are recorded and the batch continues; only a *SessionError ends the
// run early. The returned state is valid in both cases.
//
//nolint:errcheck // operator status lines; write errors are not actionable
func (o *Orchestrator) Run(ctx context.Context, items []string) (*RunState, error) {
	state := &RunState{DailyLimit: o.cfg.DailyLimit, Total: len(items)}
	fmt.Fprintf(o.out, "Found %d leads. Processing max %d today.\n", len(items), o.cfg.DailyLimit)
	o.log.Info("batch started", zap.Int("items", len(items)), zap.Int("daily_limit", o.cfg.DailyLimit))

	cooldownPending := false
	for i, id := range items {
		if state.ProcessedCount >= o.cfg.DailyLimit {
			state.StoppedAtLimit = true
			fmt.Fprintln(o.out, "Daily limit reached. Stopping safely.")
			o.log.Info("daily limit reached", zap.Int("processed", state.ProcessedCount))
			break
		}
		if err := ctx.Err(); err != nil {
			return state, &SessionError{Identifier: id, Err: err}
		}

		fmt.Fprintf(o.out, "\n[%d/%d] Checking: %s\n", state.ProcessedCount+1, o.cfg.DailyLimit, id)
		if found, status := o.deps.Filter.Exists(ctx, id); found {
			state.Skipped++
			fmt.Fprintf(o.out, "Skipping: lead already in DB (status: %s)\n", status)
			o.emit(i, id, ItemSkipped, status)
			continue
		}

		if cooldownPending {
			o.cooldown(ctx, i, id)
			cooldownPending = false
			if err := ctx.Err(); err != nil {
				return state, &SessionError{Identifier: id, Err: err}
			}
		}

		lowConfidence, err := o.processItem(ctx, state, i, id)
		switch {
		case err == nil:
			state.ProcessedCount++
			if lowConfidence {
				state.LowConfidence++
			}
			cooldownPending = true
			o.emit(i, id, ItemPersisted, "")
		case errors.Is(err, db.ErrDuplicateLead):
			state.Skipped++
			fmt.Fprintln(o.out, "Skipping: lead was stored concurrently")
			o.log.Warn("store rejected duplicate lead", zap.String("identifier", id))
			o.emit(i, id, ItemSkipped, "duplicate")
		default:
			state.Failed++
			if serr := o.sessionErr(ctx, id); serr != nil {
				o.log.Error("session failed", zap.String("identifier", id), zap.Error(err))
				return state, serr
			}
			fmt.Fprintf(o.out, "   Error processing this lead: %v\n", err)
			o.log.Warn("item failed", zap.String("identifier", id), zap.Error(err))
			o.snapshot(ctx, ErrorAction)
			o.emit(i, id, ItemFailed, err.Error())
		}
	}

	fmt.Fprintln(o.out, "\nBatch job complete.")
	o.log.Info("batch complete",
		zap.Int("processed", state.ProcessedCount),
		zap.Int("skipped", state.Skipped),
		zap.Int("failed", state.Failed))
	return state, nil
}

// processItem runs navigate, scroll, extract, draft and save for one item.
// A panic anywhere in the item is recovered and returned as an error.
//
//nolint:errcheck // operator status lines; write errors are not actionable
func (o *Orchestrator) processItem(ctx context.Context, state *RunState, index int, id string) (lowConfidence bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", id, r)
		}
	}()

	page := o.deps.Page
	h := o.deps.Humanizer

	if err := o.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("failed to wait for navigation slot: %w", err)
	}
	state.Visited++
	if err := page.Navigate(ctx, id); err != nil {
		return false, err
	}
	o.emit(index, id, ItemNavigated, "")

	h.Pause(ctx, o.cfg.LoadWait.Min, o.cfg.LoadWait.Max)
	if err := h.Scroll(ctx, page, o.cfg.ScrollOffset); err != nil {
		return false, err
	}
	h.Pause(ctx, o.cfg.SettleWait.Min, o.cfg.SettleWait.Max)
	o.expand(ctx)

	fmt.Fprintln(o.out, "   Scraping profile data...")
	rec, err := o.deps.Extractor.Extract(ctx, page, id)
	if err != nil {
		return false, err
	}
	o.emit(index, id, ItemScraped, "")

	if rec.LowConfidence() {
		fmt.Fprintln(o.out, "   Warning: could not extract name. Page might not have loaded correctly.")
		o.log.Warn("low confidence record", zap.String("identifier", id), zap.Any("missing", rec.Missing))
		o.snapshot(ctx, fmt.Sprintf(FailedScrapeActionFmt, state.ProcessedCount))
		lowConfidence = true
	}

	text := o.deps.Drafter.Draft(ctx, rec)
	o.emit(index, id, ItemDrafted, "")

	if err := o.deps.Persister.Save(ctx, id, rec, text); err != nil {
		return lowConfidence, err
	}
	fmt.Fprintf(o.out, "   Saved to DB: %s\n", rec.FullName)
	return lowConfidence, nil
}

// expand clicks the about section's "see more" control when present. Failure is ignored.
func (o *Orchestrator) expand(ctx context.Context) {
	sel := o.cfg.ExpandSelector
	if sel == "" {
		return
	}
	st, err := o.deps.Page.ElementState(ctx, sel)
	if err != nil || !st.Found {
		return
	}
	if !o.deps.Humanizer.MoveAndClick(ctx, o.deps.Page, sel, o.cfg.ClickRetries) {
		o.log.Debug("see more expansion skipped", zap.String("selector", sel))
	}
}

// cooldown sleeps for a random interval from the cooldown range.
//
//nolint:errcheck // operator status lines; write errors are not actionable
func (o *Orchestrator) cooldown(ctx context.Context, index int, nextID string) {
	d := o.deps.Humanizer.Duration(o.cfg.Cooldown)
	secs := int(d.Round(time.Second) / time.Second)
	fmt.Fprintf(o.out, "Resting for %.1f min (%ds) before next profile...\n", d.Minutes(), secs)
	o.log.Debug("cooldown", zap.Duration("duration", d))
	o.emit(index, nextID, ItemCooldown, d.String())
	o.deps.Sleep(ctx, d)
}

// sessionErr reports whether the run can no longer continue.
func (o *Orchestrator) sessionErr(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return &SessionError{Identifier: id, Err: err}
	}
	if err := o.deps.Page.Err(); err != nil {
		return &SessionError{Identifier: id, Err: err}
	}
	return nil
}

func (o *Orchestrator) snapshot(ctx context.Context, action string) {
	if o.deps.Snapshots == nil {
		return
	}
	o.deps.Snapshots.Capture(ctx, o.deps.Page, action)
}

func (o *Orchestrator) emit(index int, id string, st ItemState, msg string) {
	if o.deps.OnProgress != nil {
		o.deps.OnProgress(ProgressEvent{Index: index, Identifier: id, State: st, Message: msg})
	}
}
