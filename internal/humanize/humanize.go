// Package humanize provides the randomized timing and motion primitives that gate
// every interaction with the browser. All primitives are stateless across calls.
package humanize

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"
)

// Range is an inclusive duration interval that random waits are drawn from.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Seconds builds a Range from fractional second bounds.
func Seconds(minS, maxS float64) Range {
	return Range{
		Min: time.Duration(minS * float64(time.Second)),
		Max: time.Duration(maxS * float64(time.Second)),
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration)

// Scroller is a page that can be scrolled vertically by a pixel offset.
type Scroller interface {
	ScrollBy(ctx context.Context, dy int) error
}

// ElementState describes an element's clickability and viewport position.
type ElementState struct {
	Found   bool    `json:"found"`
	Enabled bool    `json:"enabled"`
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Clickable reports whether the element exists and is enabled and visible.
func (s ElementState) Clickable() bool {
	return s.Found && s.Enabled && s.Visible
}

// Pointer is a page that supports pointer interaction with elements addressed by selector.
type Pointer interface {
	ScrollIntoView(ctx context.Context, selector string) error
	ElementState(ctx context.Context, selector string) (ElementState, error)
	MoveMouse(ctx context.Context, x, y float64) error
	Click(ctx context.Context, x, y float64) error
}

// Options configures an Engine.
type Options struct {
	DefaultPause Range     // bounds used when a primitive pauses without explicit bounds
	RetryPause   Range     // pause between failed click attempts
	Jitter       int       // max pixel offset applied around an element's center
	Out          io.Writer // operator status lines
	Sleep        SleepFunc
	Rand         *rand.Rand
}

// DefaultOptions returns the standard humanization settings.
func DefaultOptions() *Options {
	return &Options{
		DefaultPause: Seconds(0.3, 0.9),
		RetryPause:   Seconds(0.5, 1.0),
		Jitter:       5,
		Out:          os.Stdout,
		Sleep:        SleepContext,
	}
}

// Engine implements the humanization primitives.
// It is not safe for concurrent use; the batch runs on a single flow of control.
type Engine struct {
	defaultPause Range
	retryPause   Range
	jitter       int
	out          io.Writer
	sleep        SleepFunc
	rng          *rand.Rand
}

// New creates an Engine. Zero-valued option fields fall back to DefaultOptions.
func New(opts *Options) *Engine {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}

	e := &Engine{
		defaultPause: opts.DefaultPause,
		retryPause:   opts.RetryPause,
		jitter:       opts.Jitter,
		out:          opts.Out,
		sleep:        opts.Sleep,
		rng:          opts.Rand,
	}
	if e.defaultPause == (Range{}) {
		e.defaultPause = defaults.DefaultPause
	}
	if e.retryPause == (Range{}) {
		e.retryPause = defaults.RetryPause
	}
	if e.jitter < 0 {
		e.jitter = -e.jitter
	}
	if e.out == nil {
		e.out = io.Discard
	}
	if e.sleep == nil {
		e.sleep = SleepContext
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return e
}

// SleepContext sleeps for d, returning early if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Duration draws a duration uniformly from r. Reversed bounds are swapped.
func (e *Engine) Duration(r Range) time.Duration {
	lo, hi := r.Min, r.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + time.Duration(e.rng.Int64N(int64(hi-lo)+1))
}

// Pause suspends the flow for a duration drawn uniformly from [min, max]. It never fails.
func (e *Engine) Pause(ctx context.Context, min, max time.Duration) {
	e.sleep(ctx, e.Duration(Range{Min: min, Max: max}))
}

// DefaultPause pauses with the engine's default bounds.
func (e *Engine) DefaultPause(ctx context.Context) {
	e.Pause(ctx, e.defaultPause.Min, e.defaultPause.Max)
}

// Scroll issues one vertical scroll by a signed offset drawn from
// [-maxOffset, maxOffset], then pauses with the default bounds.
func (e *Engine) Scroll(ctx context.Context, s Scroller, maxOffset int) error {
	if maxOffset < 0 {
		maxOffset = -maxOffset
	}
	offset := e.rng.IntN(2*maxOffset+1) - maxOffset

	if err := s.ScrollBy(ctx, offset); err != nil {
		return fmt.Errorf("failed to scroll by %d: %w", offset, err)
	}
	e.DefaultPause(ctx)
	return nil
}

// MoveAndClick brings the element into view and clicks it with pointer jitter,
// retrying up to maxRetries times. It returns false once retries are exhausted;
// a failed click is never escalated as an error.
//
//nolint:errcheck // operator status lines; write errors are not actionable
func (e *Engine) MoveAndClick(ctx context.Context, p Pointer, selector string, maxRetries int) bool {
	// Scrolling into view is best effort; the state check below decides clickability.
	_ = p.ScrollIntoView(ctx, selector)
	e.DefaultPause(ctx)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		state, err := p.ElementState(ctx, selector)
		if err != nil || !state.Clickable() {
			fmt.Fprintf(e.out, "Element not clickable on attempt %d\n", attempt)
			e.Pause(ctx, e.retryPause.Min, e.retryPause.Max)
			continue
		}

		if err := e.click(ctx, p, state); err != nil {
			fmt.Fprintf(e.out, "Click failed on attempt %d: %v\n", attempt, err)
			if attempt < maxRetries {
				e.Pause(ctx, e.retryPause.Min, e.retryPause.Max)
			}
			continue
		}

		fmt.Fprintf(e.out, "Click successful on attempt %d\n", attempt)
		e.DefaultPause(ctx)
		return true
	}

	fmt.Fprintf(e.out, "Failed to click element after %d attempts\n", maxRetries)
	return false
}

// click performs move, pause, jittered move, pause, click.
func (e *Engine) click(ctx context.Context, p Pointer, state ElementState) error {
	if err := p.MoveMouse(ctx, state.X, state.Y); err != nil {
		return err
	}
	e.Pause(ctx, 100*time.Millisecond, 400*time.Millisecond)

	x := state.X + float64(e.rng.IntN(2*e.jitter+1)-e.jitter)
	y := state.Y + float64(e.rng.IntN(2*e.jitter+1)-e.jitter)
	if err := p.MoveMouse(ctx, x, y); err != nil {
		return err
	}
	e.Pause(ctx, 50*time.Millisecond, 200*time.Millisecond)

	return p.Click(ctx, x, y)
}
