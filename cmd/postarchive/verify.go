package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"postarchive/pkg/archive"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Check that every written document parses back",
	Long: `Walk an archive and parse the front matter of every document in it.
The directory defaults to the configured output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	opts := cfg.PathOptions()
	if len(args) == 1 {
		opts.BaseDirectory = args[0]
	}
	printer.Info("Verifying", opts.BaseDirectory)

	result, err := archive.Verify(opts)
	if err != nil {
		return err
	}

	printer.Info("Documents", strconv.Itoa(result.Documents))
	for _, f := range result.Failures {
		printer.Error(f.Path, f.Err)
	}
	if !result.OK() {
		return fmt.Errorf("%d of %d documents failed to parse", len(result.Failures), result.Documents)
	}

	printer.Success("All documents parse")
	return nil
}
