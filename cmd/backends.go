package cmd

import (
	"fmt"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/database"
	"media-cleaner/core/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// backends holds the optional connections a command works with.
type backends struct {
	db      *gorm.DB
	storage storage.Client
}

// openBackends connects what the configuration asks for. In strict mode a
// failed connection is returned as an error, otherwise it is logged and the
// backend is left nil.
func openBackends(cfg *config.Config, logg *zap.Logger, strict bool) (*backends, error) {
	b := &backends{}

	if cfg.Catalog.Source == catalog.SourceDatabase {
		db, err := database.Connect(cfg.Database)
		switch {
		case err == nil:
			b.db = db
			logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
		case strict:
			return nil, fmt.Errorf("database connection required: %w", err)
		default:
			logg.Warn("Optional database connection failed", zap.Error(err))
		}
	}

	if cfg.Storage.Enabled || cfg.Catalog.Source == catalog.SourceStorage || cfg.Storage.ReportPrefix != "" {
		client, err := storage.NewClient(cfg.Storage)
		switch {
		case err == nil:
			b.storage = client
		case strict:
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		default:
			logg.Warn("Storage client unavailable", zap.Error(err))
		}
	}

	return b, nil
}

// catalogDeps exposes the backends to the reference sources.
func (b *backends) catalogDeps(cfg *config.Config) catalog.Deps {
	return catalog.Deps{
		DB:          b.db,
		TablePrefix: cfg.Database.TablePrefix,
		Storage:     b.storage,
		Bucket:      cfg.Storage.Bucket,
		Fs:          afero.NewOsFs(),
	}
}

// referenceObjects lists the bucket objects the run depends on.
func referenceObjects(cfg *config.Config) []string {
	if cfg.Catalog.Source == catalog.SourceStorage {
		return []string{cfg.Catalog.Object}
	}
	return nil
}
