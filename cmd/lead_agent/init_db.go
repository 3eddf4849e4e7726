package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCommand = &cobra.Command{
	Use:   "init-db",
	Short: "Create the leads table if it does not exist",
	RunE:  runInitDBCmd,
}

func init() {
	rootCmd.AddCommand(initDBCommand)
}

func runInitDBCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "leads table ready")
	return nil
}
