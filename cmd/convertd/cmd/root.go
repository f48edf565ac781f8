// Package cmd implements the CLI commands for convertd.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avpress/convertd/internal/config"
	"github.com/avpress/convertd/internal/observability"
	"github.com/avpress/convertd/internal/version"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "convertd",
	Short:   "HTTP media conversion service",
	Version: version.Short(),
	Long: `convertd is an HTTP service that converts uploaded audio and video files
using an ffmpeg binary on the host.

Configuration is read from a YAML file, environment variables prefixed with
CONVERTD_, and command-line flags, in increasing order of precedence.

Example:
  # Start with defaults (listens on :8080, stores files under ./data)
  convertd serve

  # Start with a config file and debug logging
  convertd serve --config /etc/convertd/config.yaml --log-level debug`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}

// loadConfig loads configuration and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	// CLI flags win over file and environment values.
	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ := rootCmd.PersistentFlags().GetString("log-format")
		cfg.Logging.Format = strings.ToLower(format)
	}

	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}

	return cfg, nil
}

// initLogging builds the process-wide logger from the loaded configuration.
func initLogging(cfg *config.Config) {
	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr)
	observability.SetDefault(logger)
}
