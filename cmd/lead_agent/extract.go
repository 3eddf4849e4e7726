package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/observability"
)

var extractCommand = &cobra.Command{
	Use:   "extract <page_source.html>",
	Short: "Run the profile extractor against saved page markup",
	Long: `Parses a page source file (for example a *_page_source.html diagnostic snapshot) with the
same probes the batch uses and prints the extracted record. No browser or database is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractCmd,
}

var (
	extractIdentifier string
	extractJSON       bool
)

func init() {
	extractCommand.Flags().StringVar(&extractIdentifier, "id", "", "Identifier recorded on the result (default: the file path)")
	extractCommand.Flags().BoolVar(&extractJSON, "json", false, "Print the record as JSON")
	rootCmd.AddCommand(extractCommand)
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	id := extractIdentifier
	if id == "" {
		id = args[0]
	}
	rec := extract.New().ExtractHTML(id, string(data))

	out := cmd.OutOrStdout()
	if extractJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	observability.NewPrinter(out).PrintRecord(rec)
	return nil
}
