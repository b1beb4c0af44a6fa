package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"postarchive/pkg/config"
	"postarchive/pkg/logger"
	"postarchive/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool

	printer = ui.NewPrinter(nil, false)
)

// errFailures is returned by --strict runs that did not complete cleanly.
// The summary has already been printed, so Execute only sets the exit code.
var errFailures = errors.New("archive run finished with failures")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postarchive",
	Short: "Write blog posts and their images to a dated folder tree",
	Long: `postarchive turns a manifest of posts into Markdown files with YAML front
matter, laid out in year, month and per-post folders, and downloads every
image the posts reference next to them.

Image downloads are staggered across the whole run and bounded by
--concurrent, so large archives do not flood the image host.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		printer = ui.NewPrinter(cmd.OutOrStdout(), quiet)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailures) {
			ui.NewPrinter(os.Stderr, false).Error(err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.postarchive.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`postarchive {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges the config file, environment and the flags the user
// actually set, then initializes the global logger from the result.
func loadConfig(cmd *cobra.Command, flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	switch {
	case cmd.Flags().Changed("log-level"):
		flags["log-level"] = logLevel
	case quiet:
		flags["log-level"] = "error"
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
