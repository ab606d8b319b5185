package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptvaultapp/promptvault-server/internal/cli"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <slug> [version]",
	Short: "Show a prompt's version history",
	Long: `Show a prompt's version ledger, newest first.

With a version number, prints that version's content instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		if len(args) == 2 {
			version, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}

			v, err := client.GetVersion(cmd.Context(), args[0], version)
			if err != nil {
				return err
			}

			fmt.Print(v.Content)
			if !strings.HasSuffix(v.Content, "\n") {
				fmt.Println()
			}
			return nil
		}

		resp, err := client.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <slug> <version>",
	Short: "Restore an old version's content",
	Long: `Restore an old version's content as the current one.

The restore itself is recorded as a new version, so nothing in the
ledger is lost.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}

		p, err := newClient().RestoreVersion(cmd.Context(), args[0], version)
		if err != nil {
			return err
		}

		fmt.Printf("Restored %s to version %s content (now version %d)\n", p.Slug, args[1], p.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(restoreCmd)
}
