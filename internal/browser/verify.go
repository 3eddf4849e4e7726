package browser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/diagnostics"
)

// LandingAction labels the snapshot taken on the landing page during verification.
const LandingAction = "landing_page"

// LoginConfirmer blocks until a human operator reports a completed manual login.
// Implementations have no timeout; only ctx cancellation ends the wait early.
type LoginConfirmer interface {
	AwaitLogin(ctx context.Context, currentURL string) error
}

// Pauser waits a random interval within bounds.
type Pauser interface {
	Pause(ctx context.Context, min, max time.Duration)
}

// Snapshotter records a diagnostic snapshot of a page.
type Snapshotter interface {
	Capture(ctx context.Context, src diagnostics.Source, action string) diagnostics.Snapshot
}

// NeedsLogin reports whether url is an unauthenticated redirect rather than the feed.
func NeedsLogin(url string) bool {
	u := strings.ToLower(url)
	if strings.Contains(u, "feed") {
		return false
	}
	return strings.Contains(u, "login") || strings.Contains(u, "signup") || strings.Contains(u, "authwall")
}

// Verify opens the landing page, snapshots it and, when the session is not
// authenticated, suspends in StateAwaitingLogin until confirm returns.
func (s *Session) Verify(ctx context.Context, pauser Pauser, snap Snapshotter, confirm LoginConfirmer) error {
	return verifyLanding(ctx, s, s.opts, s.log, pauser, snap, confirm)
}

type landingPage interface {
	diagnostics.Source
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	setState(State)
}

func verifyLanding(ctx context.Context, p landingPage, opts *Options, log *zap.Logger,
	pauser Pauser, snap Snapshotter, confirm LoginConfirmer) error {
	log.Info("verifying session", zap.String("landing_url", opts.LandingURL))

	if err := p.Navigate(ctx, opts.LandingURL); err != nil {
		return fmt.Errorf("failed to open landing page: %w", err)
	}
	if snap != nil {
		snap.Capture(ctx, p, LandingAction)
	}
	if pauser != nil {
		pauser.Pause(ctx, opts.VerifyWaitMin, opts.VerifyWaitMax)
	}

	url, err := p.Location(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify session: %w", err)
	}

	if NeedsLogin(url) {
		if confirm == nil {
			return fmt.Errorf("login required at %s and no operator prompt is configured", url)
		}
		p.setState(StateAwaitingLogin)
		log.Warn("login required, waiting for operator", zap.String("url", url))
		if err := confirm.AwaitLogin(ctx, url); err != nil {
			return fmt.Errorf("login not confirmed: %w", err)
		}
		log.Info("operator confirmed login")
	}

	p.setState(StateVerified)
	log.Info("session verified", zap.String("url", url))
	return nil
}

// ConsolePrompt asks the operator on Out and waits for Enter on In.
type ConsolePrompt struct {
	In  io.Reader
	Out io.Writer
}

// AwaitLogin implements LoginConfirmer. It waits indefinitely for a line on In.
//
//nolint:errcheck // operator prompt; write errors are not actionable
func (p ConsolePrompt) AwaitLogin(ctx context.Context, currentURL string) error {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "\nLogin required (current page: %s).\n", currentURL)
	fmt.Fprint(out, "Log in manually in the browser window, then press Enter to continue...")

	done := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
			if line == "" {
				err = errors.New("input closed before login was confirmed")
			}
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		fmt.Fprintln(out)
		return err
	}
}
