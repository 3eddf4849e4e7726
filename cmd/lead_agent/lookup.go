package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-harvester/internal/observability"
)

var lookupCommand = &cobra.Command{
	Use:   "lookup <profile-url>",
	Short: "Show the stored lead for a profile URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookupCmd,
}

var lookupJSON bool

func init() {
	lookupCommand.Flags().BoolVar(&lookupJSON, "json", false, "Print the lead as JSON")
	rootCmd.AddCommand(lookupCommand)
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lead, err := store.GetLeadByURL(ctx, args[0])
	if err != nil {
		return err
	}
	if lead == nil {
		return fmt.Errorf("no lead stored for %s", args[0])
	}

	if lookupJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lead)
	}
	observability.NewPrinter(out).PrintLead(lead)
	return nil
}
