package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configKeys are the settings pv understands.
var configKeys = map[string]string{
	"server":  "server URL",
	"api_key": "API key for remote servers",
	"output":  "default output format (table, yaml, json)",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := make([]string, 0, len(configKeys))
		for key := range configKeys {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Printf("%s = %s\n", key, viper.GetString(key))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := configKeys[args[0]]; !ok {
			return fmt.Errorf("unknown config key %q", args[0])
		}

		fmt.Println(viper.GetString(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := configKeys[args[0]]; !ok {
			return fmt.Errorf("unknown config key %q", args[0])
		}

		viper.Set(args[0], args[1])

		path := viper.ConfigFileUsed()
		if path == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("failed to locate config directory: %w", err)
			}
			dir := filepath.Join(configDir, "promptvault")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			path = filepath.Join(dir, "config.yaml")
		}

		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Set %s in %s\n", args[0], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
