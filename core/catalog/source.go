package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"media-cleaner/core/storage"

	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// GalleryTable holds every image value assigned to a product.
const GalleryTable = "catalog_product_entity_media_gallery"

var (
	// ErrUnknownSource is returned for an unsupported catalog.source value.
	ErrUnknownSource = errors.New("unknown catalog source")
	// ErrSourceUnavailable is returned when the selected source lacks its backend.
	ErrSourceUnavailable = errors.New("catalog source unavailable")
	// ErrMissingGallery is returned when the gallery table or its value column is absent.
	ErrMissingGallery = errors.New("media gallery table not found")
)

// Source yields the raw reference identifiers of the catalog.
type Source interface {
	// Load returns every identifier. Duplicates and blanks are allowed.
	Load(ctx context.Context) ([]string, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}

// Deps carries the backends a Source may be built on.
type Deps struct {
	DB          *gorm.DB
	TablePrefix string
	Storage     storage.Client
	Bucket      string
	Fs          afero.Fs
}

// New builds the Source selected by cfg.
func New(cfg Config, deps Deps) (Source, error) {
	switch cfg.Source {
	case SourceDatabase, "":
		if deps.DB == nil {
			return nil, fmt.Errorf("%w: database not connected", ErrSourceUnavailable)
		}
		return NewDBSource(deps.DB, deps.TablePrefix+GalleryTable), nil
	case SourceFile:
		fs := deps.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileSource(fs, cfg.File), nil
	case SourceStorage:
		if deps.Storage == nil {
			return nil, fmt.Errorf("%w: storage not configured", ErrSourceUnavailable)
		}
		return NewObjectSource(deps.Storage, deps.Bucket, cfg.Object), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// readLines returns the non-blank lines of r. Lines starting with # are comments.
func readLines(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}
