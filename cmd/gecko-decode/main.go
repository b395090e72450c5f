// Gecko-decode turns captured Gecko spa controller frames into named values.
//
// A frame is the hex dump of a controller's config or log structure, or of a
// live status message. gecko-decode maps its bytes onto a structure
// revision's field catalog, applying that revision's offset corrections, and
// prints the decoded fields.
//
// Usage:
//
//	gecko-decode [command] [flags]
//
// See 'gecko-decode --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dccourt/esphome-gecko/internal/config"
	"github.com/dccourt/esphome-gecko/internal/logging"
	"github.com/dccourt/esphome-gecko/internal/version"
)

// Global flags
var (
	logLevel   string
	configPath string
)

// cfg is loaded before any subcommand runs
var cfg *config.Registry

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gecko-decode",
	Short: "Gecko spa controller frame decoder",
	Long: `Decode captured Gecko spa controller frames into named field values.

Frames are matched against a structure revision: a catalog of fields and the
offset corrections that line the frame's bytes up with the catalog. Built-in
revisions cover the inYT config and log structures and live status messages;
other catalogs load from YAML or TOML files.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the per-user config location)")

	rootCmd.AddCommand(versionCmd)
}

// setup loads the config file and starts logging. The log level comes from
// --log-level, then the environment, then the config file.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.LoadRegistry()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" && cfg.Defaults != nil {
		level = cfg.Defaults.LogLevel
	}
	return logging.Initialize(level)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "gecko-decode %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
