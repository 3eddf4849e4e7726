package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/diagnostics"
	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/humanize"
	"github.com/jonathan/lead-harvester/internal/leads"
	"github.com/jonathan/lead-harvester/internal/observability"
	"github.com/jonathan/lead-harvester/internal/pipeline"
	"github.com/jonathan/lead-harvester/internal/targets"
)

// warmUpOffset bounds the scroll performed on the landing page before the batch.
const warmUpOffset = 400

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Process the target list under the daily limit",
	Long: `Loads the target list, verifies the browser session, then for each profile:
dedup check -> navigate -> humanized wait and scroll -> extract -> draft -> store -> cooldown.

A failing profile is logged with a diagnostic snapshot and the batch continues.
Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runBatchCmd,
}

var (
	runTargets string
	runLimit   int
	runDrafter string
	runAPIKey  string
	runModel   string
)

func init() {
	runCommand.Flags().StringVarP(&runTargets, "targets", "t", "", "JSON or YAML list of profile URLs (default: leads.json)")
	runCommand.Flags().IntVarP(&runLimit, "limit", "l", 0, "Maximum profiles to process in this run (default: 20)")
	runCommand.Flags().StringVar(&runDrafter, "drafter", "", "Greeting drafter: template or gemini (default: template)")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runModel, "model", "", "Gemini model for the gemini drafter")
	addSessionFlags(runCommand)

	rootCmd.AddCommand(runCommand)
}

//nolint:errcheck // operator status lines; write errors are not actionable
func runBatchCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	items, err := targets.Load(cfg.TargetsFile, logger)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(out, "No leads found in %s. Exiting.\n", cfg.TargetsFile)
		return nil
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	drafter, closeDrafter, err := newDrafter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDrafter()

	engine := newEngine(out)
	recorder := diagnostics.NewRecorder(cfg.ScreenshotsDir, logger)

	session, err := verifiedSession(ctx, cfg, engine, recorder, loginPrompt(cmd), out)
	if err != nil {
		return err
	}
	defer func() {
		fmt.Fprintln(out, "Closing browser session...")
		session.Close()
	}()

	if err := engine.Scroll(ctx, session, warmUpOffset); err != nil {
		logger.Debug("warm-up scroll failed", zap.Error(err))
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.DailyLimit = cfg.Limit()
	pcfg.Cooldown = humanize.Seconds(cfg.CooldownMinSeconds, cfg.CooldownMaxSeconds)

	orchestrator, err := pipeline.New(pcfg, pipeline.Deps{
		Page:      session,
		Humanizer: engine,
		Filter:    leads.NewFilter(store, logger),
		Extractor: extract.New(),
		Drafter:   drafter,
		Persister: leads.NewGateway(store, logger),
		Snapshots: recorder,
		Out:       out,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	state, runErr := orchestrator.Run(ctx, items)
	observability.NewPrinter(out).PrintRunSummary(state)

	var sessionErr *pipeline.SessionError
	if errors.As(runErr, &sessionErr) {
		fmt.Fprintf(out, "Critical error: %v\n", runErr)
		captureCritical(ctx, recorder, session)
		if errors.Is(runErr, context.Canceled) {
			return nil
		}
	}
	return runErr
}
