package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/database"
	"media-cleaner/core/reconcile"
	"media-cleaner/core/storage"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// Loads the reference set from the configured source and looks up the keys
// given as arguments in both case modes.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	deps := catalog.Deps{
		TablePrefix: cfg.Database.TablePrefix,
		Bucket:      cfg.Storage.Bucket,
		Fs:          afero.NewOsFs(),
	}
	if cfg.Catalog.Source == catalog.SourceDatabase {
		if deps.DB, err = database.Connect(cfg.Database); err != nil {
			log.Fatal(err)
		}
	}
	if cfg.Catalog.Source == catalog.SourceStorage {
		if deps.Storage, err = storage.NewClient(cfg.Storage); err != nil {
			log.Fatal(err)
		}
	}

	source, err := catalog.New(cfg.Catalog, deps)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Reference Loading ===")
	ids, err := source.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	exact := reconcile.NewReferenceSet(ids, false)
	folded := reconcile.NewReferenceSet(ids, true)
	fmt.Printf("Source: %s\n", source.Name())
	fmt.Printf("Rows loaded: %d\n", len(ids))
	fmt.Printf("Distinct keys: %d (case-insensitive: %d)\n", exact.Len(), folded.Len())

	malformed := 0
	for _, id := range ids {
		if !strings.HasPrefix(id, "/") {
			malformed++
		}
	}
	fmt.Printf("Keys without leading slash: %d\n", malformed)

	lookups := map[string]map[string]bool{}
	if len(os.Args) > 1 {
		fmt.Println("\n=== Key Lookup ===")
	}
	for _, key := range os.Args[1:] {
		lookups[key] = map[string]bool{
			"exact":            exact.Contains(key),
			"case_insensitive": folded.Contains(key),
		}
		fmt.Printf("%s -> exact: %v, case-insensitive: %v\n", key, exact.Contains(key), folded.Contains(key))
	}

	output := map[string]any{
		"source":          source.Name(),
		"rows":            len(ids),
		"distinct":        exact.Len(),
		"distinct_folded": folded.Len(),
		"malformed":       malformed,
		"lookups":         lookups,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	os.WriteFile("debug_references.json", data, 0644)

	fmt.Println("\nDebug complete. Check debug_references.json for details.")
}
