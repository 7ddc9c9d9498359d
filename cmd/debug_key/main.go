package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/database"
	"media-cleaner/core/reconcile"
	"media-cleaner/core/storage"

	"github.com/spf13/afero"
)

// Prints how each path argument is classified, which key it maps to and
// whether the catalog still references it.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <file>...", filepath.Base(os.Args[0]))
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	table, err := cfg.Media.AreaTable()
	if err != nil {
		log.Fatal(err)
	}
	areas, unknown := table.Resolve(cfg.Media.Include)
	for _, name := range unknown {
		fmt.Printf("⚠️  Unknown area %q skipped\n", name)
	}

	deps := catalog.Deps{
		TablePrefix: cfg.Database.TablePrefix,
		Bucket:      cfg.Storage.Bucket,
		Fs:          afero.NewOsFs(),
	}
	switch cfg.Catalog.Source {
	case catalog.SourceDatabase:
		if deps.DB, err = database.Connect(cfg.Database); err != nil {
			log.Fatal(err)
		}
	case catalog.SourceStorage:
		if deps.Storage, err = storage.NewClient(cfg.Storage); err != nil {
			log.Fatal(err)
		}
	}

	source, err := catalog.New(cfg.Catalog, deps)
	if err != nil {
		log.Fatal(err)
	}
	ids, err := source.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	refs := reconcile.NewReferenceSet(ids, cfg.Media.CaseInsensitive)
	fmt.Printf("Loaded %d references from %s\n\n", refs.Len(), source.Name())

	for _, path := range os.Args[1:] {
		abs := filepath.ToSlash(path)
		area, ok := reconcile.Classify(filepath.ToSlash(filepath.Dir(path)), areas)
		if !ok {
			fmt.Printf("File: %s\n  -> not in any enabled area\n", abs)
			continue
		}

		rel := reconcile.RelativePath(cfg.Media.Root, abs)
		key, ok := reconcile.ExtractKey(rel, area, cfg.Media.CaseInsensitive)
		fmt.Printf("File: %s\n  -> area: %s (%s), key: %q, extracted: %v\n", abs, area.Name, area.Kind, key, ok)

		if refs.Contains(key) {
			fmt.Println("  ✅ Referenced by the catalog")
		} else {
			fmt.Println("  ⚠️  Not referenced, would be tagged for removal")
		}
	}
}
