package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptvaultapp/promptvault-server/internal/cli"
)

var (
	cfgFile      string
	serverURL    string
	apiKey       string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pv",
	Short: "Personal prompt library client",
	Long: `pv manages a personal library of reusable LLM prompts stored on a
PromptVault server.

Prompts are addressed by slug and carry tags, categories, usage stats,
and a full version history. Prompts containing {{ variable }} markers
are templates and can be rendered with variable values.

Examples:
  pv add --title "Code Review" --file review.txt --tags coding
  pv list --category coding
  pv render code-review language=go
  pv versions code-review`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.config/promptvault/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&serverURL, "server", "", "server URL (default: http://localhost:8080)",
	)
	rootCmd.PersistentFlags().StringVar(
		&apiKey, "api-key", "", "API key for remote servers",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "", "output format: table, yaml, or json",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(resolveOutput())
	}
}

// initConfig loads the config file and environment. Flags beat env vars,
// env vars beat the file.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(configDir, "promptvault"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PV")
	viper.AutomaticEnv()

	viper.SetDefault("server", "http://localhost:8080")
	viper.SetDefault("output", "table")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
		}
	}
}

func resolveServer() string {
	if serverURL != "" {
		return serverURL
	}
	return viper.GetString("server")
}

func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return viper.GetString("api_key")
}

func resolveOutput() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("output")
}

// newClient builds a client from flags and config.
func newClient() *cli.Client {
	return cli.NewClient(resolveServer(), resolveAPIKey())
}
