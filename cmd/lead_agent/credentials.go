package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-harvester/internal/secrets"
)

var credentialsCommand = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the lead store URL kept in the OS keychain",
}

var credentialsSetCommand = &cobra.Command{
	Use:   "set [database-url]",
	Short: "Store the database URL in the keychain (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := ""
		if len(args) == 1 {
			url = args[0]
		} else {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), "Database URL: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read database URL: %w", err)
			}
			url = strings.TrimSpace(line)
		}
		if err := secrets.SetDatabaseURL(url); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database URL stored in keychain")
		return nil
	},
}

var credentialsDeleteCommand = &cobra.Command{
	Use:   "delete",
	Short: "Remove the database URL from the keychain",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := secrets.DeleteDatabaseURL()
		if errors.Is(err, secrets.ErrNotFound) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No database URL stored")
			return nil
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database URL removed from keychain")
		return nil
	},
}

var credentialsStatusCommand = &cobra.Command{
	Use:   "status",
	Short: "Report whether a database URL is stored",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := secrets.GetDatabaseURL()
		if errors.Is(err, secrets.ErrNotFound) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No database URL stored")
			return nil
		}
		if err != nil {
			return err
		}
		scheme := "unknown scheme"
		if i := strings.Index(url, "://"); i >= 0 {
			scheme = url[:i]
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database URL stored (%s)\n", scheme)
		return nil
	},
}

func init() {
	credentialsCommand.AddCommand(credentialsSetCommand, credentialsDeleteCommand, credentialsStatusCommand)
	rootCmd.AddCommand(credentialsCommand)
}
