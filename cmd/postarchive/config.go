package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"postarchive/pkg/config"
)

// defaultConfigPath is where config init writes when --config is not set
const defaultConfigPath = ".postarchive.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage postarchive configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (` + config.EnvPrefix + `*)
  - .env files
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '` + defaultConfigPath + `' in the current directory
unless a different path is given with --config. Existing files are never
overwritten.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# postarchive configuration file
#
# Every option can also be set with an environment variable prefixed with
# ` + config.EnvPrefix + `, for example ` + config.EnvPrefix + `OUTPUT_DIR or ` + config.EnvPrefix + `STAGGER.

# Where and how posts are laid out
output:
  # Root of the archive
  base_directory: "./output"

  # <year>/<month> folders. Takes precedence over year_folders
  year_month_folders: false

  # <year> folders
  year_folders: false

  # One folder per post holding index.md and an images folder
  post_folders: false

  # Prefix post names with YYYY-MM-DD
  prefix_date: false

  # Document extension
  extension: ".md"

  # Optional JSON report of every post and image
  report_file: ""

# Image downloads
download:
  # Downloads in flight at once
  concurrent_downloads: 4

  # Documents written at once
  concurrent_writes: 8

  # Added to the start delay of each image, counted across the whole run
  stagger_increment: 25ms

  # Per image request timeout
  download_timeout: 60s

  # Extra cap on image requests, 0 for none
  requests_per_minute: 0

  user_agent: "postarchive/1.0"

# Logging
logging:
  # debug, info, warn, error, disabled
  level: "info"

  # Optional JSON log file, written in addition to the console
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	printer.Success("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	printer.Success("Configuration is valid")
	printer.Info("Output directory", cfg.Output.BaseDirectory)
	printer.Info("Concurrent downloads", fmt.Sprint(cfg.Download.ConcurrentDownloads))
	printer.Info("Stagger", cfg.Download.StaggerIncrement.String())
	printer.Info("Log level", cfg.Logging.Level)
	return nil
}
