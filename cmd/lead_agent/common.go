package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-harvester/internal/browser"
	"github.com/jonathan/lead-harvester/internal/config"
	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/draft"
	"github.com/jonathan/lead-harvester/internal/humanize"
	"github.com/jonathan/lead-harvester/internal/llm"
	"github.com/jonathan/lead-harvester/internal/secrets"
)

// loadConfig layers, highest first: flags, environment, config file, built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = *loaded
	}

	var cfg config.Config
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}
	cfg = cfg.MergeWithDefaults(fileCfg)
	applyFlagOverrides(cmd, &cfg)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if err := useLogger(cfg.Verbose); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides copies only the flags that were explicitly set.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("targets") {
		cfg.TargetsFile = runTargets
	}
	if flags.Changed("limit") {
		cfg.DailyLimit = config.Int(runLimit)
	}
	if flags.Changed("profile-dir") {
		cfg.ProfileDir = sessionProfileDir
	}
	if flags.Changed("screenshots-dir") {
		cfg.ScreenshotsDir = sessionScreenshotsDir
	}
	if flags.Changed("browser-path") {
		cfg.BrowserPath = sessionBrowserPath
	}
	if flags.Changed("headless") {
		cfg.Headless = sessionHeadless
	}
	if flags.Changed("drafter") {
		cfg.Drafter = runDrafter
	}
	if flags.Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = runModel
	}
}

// openStore resolves the store URL (config, then keychain) and connects.
func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	url, err := secrets.ResolveDatabaseURL(cfg.DatabaseURL, "")
	if err != nil {
		return nil, err
	}
	store, err := db.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}

// newDrafter builds the configured drafter. The returned cleanup is always safe to call.
func newDrafter(ctx context.Context, cfg config.Config) (draft.Drafter, func(), error) {
	if cfg.Drafter != "gemini" {
		return draft.Template{}, func() {}, nil
	}

	llmCfg := llm.DefaultConfig()
	if cfg.Model != "" {
		llmCfg = llmCfg.WithModel(llm.TierLite, cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return draft.NewLLM(client, logger), func() { _ = client.Close() }, nil
}

func newEngine(out io.Writer) *humanize.Engine {
	opts := humanize.DefaultOptions()
	opts.Out = out
	return humanize.New(opts)
}

func browserOptions(cfg config.Config) *browser.Options {
	opts := browser.DefaultOptions(cfg.ProfileDir)
	opts.ExecPath = cfg.BrowserPath
	opts.Headless = cfg.Headless
	opts.LandingURL = cfg.LandingURL
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	return opts
}
