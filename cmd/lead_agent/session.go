package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/browser"
	"github.com/jonathan/lead-harvester/internal/config"
	"github.com/jonathan/lead-harvester/internal/diagnostics"
	"github.com/jonathan/lead-harvester/internal/humanize"
	"github.com/jonathan/lead-harvester/internal/pipeline"
)

// criticalCaptureTimeout bounds the final snapshot taken after a session failure.
const criticalCaptureTimeout = 15 * time.Second

var (
	sessionProfileDir     string
	sessionScreenshotsDir string
	sessionBrowserPath    string
	sessionHeadless       bool
)

// addSessionFlags registers the browser flags shared by run and login.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessionProfileDir, "profile-dir", "", "Persistent browser profile directory (default: user_data next to the executable)")
	cmd.Flags().StringVar(&sessionScreenshotsDir, "screenshots-dir", "", "Directory for diagnostic snapshots (default: screenshots)")
	cmd.Flags().StringVar(&sessionBrowserPath, "browser-path", "", "Chrome/Chromium executable (default: auto-detect)")
	cmd.Flags().BoolVar(&sessionHeadless, "headless", false, "Run the browser without a window (login prompts need a window)")
}

// loginPrompt asks the operator on the command's own input and output streams.
func loginPrompt(cmd *cobra.Command) browser.ConsolePrompt {
	return browser.ConsolePrompt{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
}

// verifiedSession launches the browser and verifies the login, prompting the operator if needed.
// On error the session, if any, is already closed.
func verifiedSession(ctx context.Context, cfg config.Config, engine *humanize.Engine, recorder *diagnostics.Recorder, confirm browser.LoginConfirmer, out io.Writer) (*browser.Session, error) {
	fmt.Fprintln(out, "Opening browser session...")
	session, err := browser.Launch(ctx, browserOptions(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	if err := session.Verify(ctx, engine, recorder, confirm); err != nil {
		captureCritical(ctx, recorder, session)
		session.Close()
		return nil, err
	}
	fmt.Fprintln(out, "Session active.")
	return session, nil
}

// captureCritical snapshots the page after a session failure, even when ctx is already cancelled.
func captureCritical(ctx context.Context, recorder *diagnostics.Recorder, page diagnostics.Source) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), criticalCaptureTimeout)
	defer cancel()
	snap := recorder.Capture(ctx, page, pipeline.CriticalAction)
	logger.Error("critical failure captured",
		zap.String("image", snap.ImagePath),
		zap.String("markup", snap.MarkupPath))
}
