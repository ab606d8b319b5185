package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptvaultapp/promptvault-server/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newClient().Stats(cmd.Context())
		if err != nil {
			return err
		}
		return cli.Output(stats)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Categories(cmd.Context())
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags in use with prompt counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Tags(cmd.Context())
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Server %s, version %s\n", resp.Status, resp.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(healthCmd)
}
