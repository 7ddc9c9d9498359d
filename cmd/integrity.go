package cmd

import (
	"context"
	"fmt"
	"os"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/database"
	"media-cleaner/core/logger"
	"media-cleaner/feature/integrity"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the media root, catalog and storage",
	Long:  `Checks that the media root has the expected folders, that the catalog gallery table has the expected schema and that the reference objects are readable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// mediaCheckCmd represents the integrity media command
var mediaCheckCmd = &cobra.Command{
	Use:   "media",
	Short: "Check and fix the media folder structure",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// catalogCheckCmd represents the integrity catalog command
var catalogCheckCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check the catalog gallery table schema",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check the storage bucket and reference objects",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(mediaCheckCmd, catalogCheckCmd, storageCheckCmd)

	mediaCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
}

func runIntegrityChecks(ctx context.Context, runMedia, runCatalog, runStorage bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logg.Sync()

	b, _ := openBackends(cfg, logg, false)
	if runCatalog && b.db == nil && cfg.Catalog.Source != catalog.SourceDatabase {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			b.db = conn
		}
	}

	svc := integrity.NewService(integrity.Deps{
		Fs:        afero.NewOsFs(),
		MediaRoot: cfg.Media.Root,
		DB:        b.db,
		Table:     cfg.Database.Table(catalog.GalleryTable),
		Client:    b.storage,
		Bucket:    cfg.Storage.Bucket,
		Objects:   referenceObjects(cfg),
	}, logg)

	healthy := true

	if runMedia {
		logg.Info("Checking media folders...", zap.String("root", cfg.Media.Root))
		missing, err := svc.CheckMedia()
		switch {
		case err != nil:
			logg.Error("Media check failed", zap.Error(err))
			healthy = false
		case len(missing) == 0:
			logg.Info("Media folders are intact.")
		case fixFlag:
			logg.Info("Fixing missing folders...", zap.Strings("missing", missing))
			if err := svc.FixMedia(missing); err != nil {
				logg.Error("Failed to fix media folders", zap.Error(err))
				healthy = false
			} else {
				logg.Info("Media folders fixed successfully.")
			}
		default:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Run 'integrity media --fix' to create missing folders.")
			healthy = false
		}
	}

	if runCatalog {
		logg.Info("Checking catalog schema...", zap.String("table", cfg.Database.Table(catalog.GalleryTable)))
		report, err := svc.CheckCatalog()
		switch {
		case err != nil:
			logg.Error("Catalog check failed", zap.Error(err))
			healthy = false
		case report.Matched:
			logg.Info("Catalog schema matches expected definition.", zap.String("table", report.Table))
		default:
			healthy = false
			if len(report.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", report.Table), zap.Strings("columns", report.MissingColumns))
			}
			if len(report.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", report.Table), zap.Strings("mismatches", report.TypeMismatches))
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runStorage {
		logg.Info("Checking storage...", zap.String("bucket", cfg.Storage.Bucket))
		missing, err := svc.CheckStorage(ctx)
		switch {
		case err != nil:
			logg.Error("Storage check failed", zap.Error(err))
			healthy = false
		case len(missing) == 0:
			logg.Info("Storage is intact.")
		default:
			logg.Warn("Missing objects detected", zap.Strings("missing", missing))
			healthy = false
		}
	}

	if !healthy {
		_ = logg.Sync()
		os.Exit(1)
	}
}
