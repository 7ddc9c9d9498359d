package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/logger"
	"media-cleaner/core/reconcile"
	"media-cleaner/core/report"
	"media-cleaner/core/storage"
	"media-cleaner/core/utils"
	"media-cleaner/feature/media"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	// Flags for the clean command
	cleanLimit           int
	cleanDryRun          bool
	cleanInclude         []string
	cleanShowPaths       bool
	cleanCaseInsensitive bool
	cleanRoot            string
	yesConfirm           bool
)

// cleanCmd scans the media tree and removes images the catalog no longer references.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove product images no longer referenced by the catalog",
	Long: `Walks the media tree, derives the catalog key of every product and cache
image, and tags the files whose key is missing from the catalog.

Runs are dry runs by default. Removal requires --dry-run=false and a
confirmation.

Examples:
  # Report only
  media-cleaner clean

  # Scan the first 500 product images and list them
  media-cleaner clean --include product --limit 500 --show-paths

  # Remove with interactive confirmation
  media-cleaner clean --dry-run=false

  # Remove without prompting
  media-cleaner clean --dry-run=false --yes`,
	RunE: runClean,
}

func init() {
	bindCleanFlags(cleanCmd.Flags())
	RootCmd.AddCommand(cleanCmd)
}

// bindCleanFlags registers the clean flags on f.
func bindCleanFlags(f *pflag.FlagSet) {
	f.IntVarP(&cleanLimit, "limit", "l", -1, "Stop after this many classified files (-1 for no limit)")
	f.BoolVarP(&cleanDryRun, "dry-run", "d", true, "Only report, never remove (use --dry-run=false to remove)")
	f.StringSliceVarP(&cleanInclude, "include", "i", nil, "Areas to scan, in order (default: all configured areas)")
	f.BoolVarP(&cleanShowPaths, "show-paths", "p", false, "Print every file tagged for removal")
	f.BoolVarP(&cleanCaseInsensitive, "case-insensitive", "c", false, "Compare keys case-insensitively")
	f.StringVar(&cleanRoot, "root", "", "Media directory to scan (default: media.root)")
	f.BoolVar(&yesConfirm, "yes", false, "Auto-confirm removal (non-interactive)")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	b, err := openBackends(cfg, l, true)
	if err != nil {
		return err
	}

	source, err := catalog.New(cfg.Catalog, b.catalogDeps(cfg))
	if err != nil {
		return fmt.Errorf("failed to create reference source: %w", err)
	}

	svc, err := media.NewService(afero.NewOsFs(), source, cfg.Media, 0, nil, l)
	if err != nil {
		return err
	}

	opts := cleanOptions(cmd, svc.Options())
	l.Info("Starting media scan",
		zap.String("root", opts.Root),
		zap.Strings("include", opts.Include),
		zap.Int("limit", opts.Limit),
		zap.Bool("case_insensitive", opts.CaseInsensitive),
		zap.Bool("dry_run", opts.DryRun),
		zap.String("references", source.Name()),
	)

	obs := newProgressObserver(os.Stdout, isInteractive(os.Stdout), opts.ShowPaths, l)
	plan, err := svc.Plan(ctx, opts, obs)
	obs.Finish()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	for _, w := range plan.Warnings {
		l.Warn("Scan warning", zap.String("warning", w))
	}

	var (
		result *reconcile.RemovalResult
		runErr error
	)

	switch {
	case plan.Interrupted:
		l.Warn("Scan interrupted, statistics are partial and nothing was removed")
		runErr = errInterrupted
	case !opts.DryRun && len(plan.Removals) > 0:
		fmt.Println(report.RenderNotice("WARNING!",
			"About to remove images. This cannot be undone.",
			"This is not a dry run. If you want to do a dry-run, add --dry-run.",
		))
		fmt.Println(report.RenderSummary(report.Summarize(plan.Stats)))
		if !confirmDestructiveAction() {
			fmt.Println("Aborted by user, no files were removed.")
			return reconcile.ErrAborted
		}
		opts.Confirmed = true

		result = svc.Apply(ctx, plan, opts, obs)
		obs.Finish()
		runErr = removalError(result)
	}

	printCleanReport(plan, result, opts)
	archiveReport(ctx, cfg, b.storage, plan, result, opts, l)

	if result != nil {
		l.Info("Removal complete",
			zap.Int("removed", result.Removed),
			zap.Float64("removed_mb", utils.ToMegabytes(result.RemovedBytes)),
			zap.Int("failed", len(result.Failed)),
			zap.Int("skipped", result.Skipped),
		)
	}
	return runErr
}

// cleanOptions overlays explicitly set flags on the configured options.
func cleanOptions(cmd *cobra.Command, opts reconcile.Options) reconcile.Options {
	flags := cmd.Flags()
	if flags.Changed("limit") {
		opts.Limit = cleanLimit
	}
	if flags.Changed("include") {
		opts.Include = utils.SplitList(cleanInclude...)
	}
	if flags.Changed("case-insensitive") {
		opts.CaseInsensitive = cleanCaseInsensitive
	}
	if flags.Changed("root") {
		opts.Root = cleanRoot
	}
	opts.ShowPaths = cleanShowPaths
	opts.DryRun = cleanDryRun
	opts.Confirmed = false
	return opts
}

// removalError classifies the outcome of a removal run.
func removalError(result *reconcile.RemovalResult) error {
	switch {
	case result == nil:
		return nil
	case result.Skipped > 0:
		return errInterrupted
	case len(result.Failed) > 0:
		return fmt.Errorf("%w: %d of %d", errPartialFailure, len(result.Failed), len(result.Failed)+result.Removed)
	}
	return nil
}

// printCleanReport prints the statistics. It runs on every outcome.
func printCleanReport(plan *reconcile.Plan, result *reconcile.RemovalResult, opts reconcile.Options) {
	fmt.Println(report.RenderSummary(report.Summarize(plan.Stats)))
	if len(plan.Areas) > 1 {
		fmt.Println(report.RenderAreas(report.SummarizeAreas(plan.Areas)))
	}

	if result != nil && len(result.Failed) > 0 {
		fmt.Printf("\n%d file(s) could not be removed:\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  %s: %v\n", f.Path, f.Err)
		}
	}

	if opts.DryRun {
		fmt.Println(report.RenderNotice("NOTE!", "This was a DRY RUN, no files were removed"))
	}
}

// archiveReport uploads the run report when an archive prefix is configured.
// Failures are logged; the run outcome does not depend on the archive.
func archiveReport(ctx context.Context, cfg *config.Config, client storage.Client, plan *reconcile.Plan, result *reconcile.RemovalResult, opts reconcile.Options, l *zap.Logger) {
	prefix := cfg.Storage.ReportPrefix
	if prefix == "" || client == nil {
		return
	}

	// The run context may already be cancelled by the signal that stopped it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		l.Warn("Failed to archive report", zap.Error(err))
		return
	}
	key, err := report.Archive(ctx, client, cfg.Storage.Bucket, prefix, report.NewDocument(plan, result, opts))
	if err != nil {
		l.Warn("Failed to archive report", zap.Error(err))
		return
	}
	l.Info("Report archived", zap.String("bucket", cfg.Storage.Bucket), zap.String("object", key))
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm removal: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
