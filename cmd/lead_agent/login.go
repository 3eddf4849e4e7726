package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-harvester/internal/diagnostics"
)

var loginCommand = &cobra.Command{
	Use:   "login",
	Short: "Open the persistent browser profile and complete a manual login",
	Long: `Launches the browser with the persistent profile, opens the landing page and, when the
session is not authenticated, waits for you to log in by hand. The cookies stay in the profile
directory for later runs.`,
	RunE: runLoginCmd,
}

func init() {
	addSessionFlags(loginCommand)
	rootCmd.AddCommand(loginCommand)
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Headless {
		return fmt.Errorf("login needs a visible browser window; drop --headless")
	}

	recorder := diagnostics.NewRecorder(cfg.ScreenshotsDir, logger)
	session, err := verifiedSession(ctx, cfg, newEngine(out), recorder, loginPrompt(cmd), out)
	if err != nil {
		return err
	}
	session.Close()

	_, _ = fmt.Fprintf(out, "Profile saved in %s\n", cfg.ProfileDir)
	return nil
}
