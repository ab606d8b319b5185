package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptvaultapp/promptvault-server/internal/cli"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage server database snapshots",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new snapshot on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newClient().CreateBackup(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Created %s (%d bytes)\n", info.ID, info.Size)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().ListBackups(cmd.Context())
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var backupRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a snapshot from the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteBackup(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRmCmd)
	rootCmd.AddCommand(backupCmd)
}
