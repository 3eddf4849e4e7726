// Package main provides the entry point for the lead harvesting agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/observability"
)

var (
	configPath  string
	verbose     bool
	databaseURL string

	logger        = zap.NewNop()
	loggerVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lead_agent",
	Short: "Paced profile scraping and outreach drafting",
	Long: `lead_agent visits a queue of profile URLs in a persistent browser session, extracts
profile text, drafts an outreach greeting and stores each lead once, under a daily cap.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return useLogger(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "Lead store URL, postgres:// or sqlite:// (defaults to DATABASE_URL, then the keychain)")
}

// useLogger installs the shared logger at Debug level when verbose.
// loadConfig calls it again once the config file's setting is known.
func useLogger(debug bool) error {
	if debug == loggerVerbose && logger.Core().Enabled(zap.InfoLevel) {
		return nil
	}
	l, err := observability.NewLogger(debug)
	if err != nil {
		return err
	}
	_ = logger.Sync()
	logger = l
	loggerVerbose = debug
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
