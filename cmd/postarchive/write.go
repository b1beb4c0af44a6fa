package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"postarchive/pkg/archive"
	"postarchive/pkg/config"
	"postarchive/pkg/logger"
	"postarchive/pkg/manifest"
	"postarchive/pkg/ui"
)

var (
	// Write command flags
	outputDir        string
	reportFile       string
	yearFolders      bool
	yearMonthFolders bool
	postFolders      bool
	prefixDate       bool
	concurrent       int
	stagger          time.Duration
	rateLimit        int
	dryRun           bool
	strict           bool
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <manifest>",
	Short: "Write the posts in a manifest and download their images",
	Long: `Write every post in a YAML or JSON manifest as a Markdown document with
front matter, then download the images each post lists into an images
folder next to it.

Posts without a usable date are skipped when a dated layout is selected.
A failed image never stops the rest of the run; failures are listed in
the summary and, with --report, in a JSON report.`,
	Example: `  # Year folders with one folder per post
  postarchive write posts.yaml --output ./blog --year-folders --post-folders

  # Show where everything would go without writing anything
  postarchive write posts.yaml --year-month-folders --prefix-date --dry-run

  # Slower stagger, a JSON report and a non-zero exit on any failure
  postarchive write posts.yaml --stagger 100ms --report run.json --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)

	defaults := config.DefaultConfig()

	writeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: "+defaults.Output.BaseDirectory+")")
	writeCmd.Flags().StringVar(&reportFile, "report", "", "write a JSON run report to this file")
	writeCmd.Flags().BoolVar(&yearFolders, "year-folders", false, "group posts into <year> folders")
	writeCmd.Flags().BoolVar(&yearMonthFolders, "year-month-folders", false, "group posts into <year>/<month> folders")
	writeCmd.Flags().BoolVar(&postFolders, "post-folders", false, "give every post its own folder with an index document")
	writeCmd.Flags().BoolVar(&prefixDate, "prefix-date", false, "prefix post names with their date")
	writeCmd.Flags().IntVar(&concurrent, "concurrent", defaults.Download.ConcurrentDownloads, "number of concurrent image downloads")
	writeCmd.Flags().DurationVar(&stagger, "stagger", defaults.Download.StaggerIncrement, "delay added per image across the run")
	writeCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.Download.RequestsPerMinute, "image requests per minute (0 for no limit)")
	writeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the planned layout and download schedule without writing")
	writeCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any post or image did not complete cleanly")
}

// writeFlags collects the flags the user set so config file and environment
// values are only overridden on purpose.
func writeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if fs.Changed("output") {
		flags["output"] = outputDir
	}
	if fs.Changed("report") {
		flags["report"] = reportFile
	}
	if fs.Changed("year-folders") {
		flags["year-folders"] = yearFolders
	}
	if fs.Changed("year-month-folders") {
		flags["year-month-folders"] = yearMonthFolders
	}
	if fs.Changed("post-folders") {
		flags["post-folders"] = postFolders
	}
	if fs.Changed("prefix-date") {
		flags["prefix-date"] = prefixDate
	}
	if fs.Changed("concurrent") {
		flags["concurrent"] = concurrent
	}
	if fs.Changed("stagger") {
		flags["stagger"] = stagger
	}
	if fs.Changed("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	return flags
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, writeFlags(cmd))
	if err != nil {
		return err
	}
	log := logger.WithField("manifest", args[0])

	posts, err := manifest.Load(args[0])
	if err != nil {
		log.WithError(err).Error("Failed to read manifest")
		return err
	}
	for _, w := range manifest.Check(posts) {
		log.WithFields(map[string]interface{}{
			"index": w.Index,
			"slug":  w.Slug,
		}).Warn(w.Message)
		printer.Warning("Manifest", w.String())
	}

	printer.Info("Manifest", args[0])
	printer.Info("Posts", strconv.Itoa(len(posts)))
	printer.Info("Output", cfg.Output.BaseDirectory)

	if dryRun {
		plan := archive.NewPlan(posts, cfg.PathOptions(), cfg.Download.StaggerIncrement)
		printPlan(cmd.OutOrStdout(), plan)
		return nil
	}

	w, err := archive.NewWriter(cfg, archive.WithLogger(logger.GetLogger()))
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := w.WriteFiles(ctx, posts).Wait()

	printer.Print(ui.RenderSummary(rep))
	if rep.HasFailures() {
		printer.Print(ui.RenderFailures(rep))
	}

	if cfg.Output.ReportFile != "" {
		if err := rep.Save(cfg.Output.ReportFile); err != nil {
			log.WithError(err).Error("Failed to save run report")
			return err
		}
		printer.Info("Report", cfg.Output.ReportFile)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("archive run interrupted: %w", ctx.Err())
	}
	if strict && rep.HasFailures() {
		return errFailures
	}
	return nil
}

// printPlan lists every document and image path with the delay its
// download would start after.
func printPlan(out io.Writer, plan *archive.Plan) {
	for _, s := range plan.Skipped {
		fmt.Fprintf(out, "skip  post %d (%s): %v\n", s.Index, s.Slug, s.Err)
	}
	for _, p := range plan.Posts {
		fmt.Fprintf(out, "post  %s\n", p.File)
	}
	for _, task := range plan.Tasks {
		fmt.Fprintf(out, "image %s after %s <- %s\n", plan.ImagePath(task), task.Delay, task.URL)
	}
}
