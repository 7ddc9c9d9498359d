// Package reconcile finds media files that are no longer referenced by the
// catalog and removes them safely.
//
// A scan runs in two phases over an afero filesystem:
//
//  1. Enumerate: the media root is resolved to an absolute path and walked
//     (following symbolic links). Each file is classified into the first
//     enabled Area whose pattern matches its directory. Unmatched files are
//     ignored entirely. The walk stops once the configured limit of
//     classified files is reached.
//
//  2. Check: each candidate's canonical key (the "/x/y/file.jpg" signature the
//     catalog stores) is looked up in the ReferenceSet. Files whose key is
//     missing are tagged for removal. Statistics are accumulated once per file.
//
// The resulting Plan is inert. Removal only happens through Engine.Apply with
// DryRun disabled and Confirmed set, and it is best-effort: a failed delete is
// reported and the remaining files are still processed.
//
// # Areas
//
// Two areas are built in:
//   - product: original images, key anchored to the two directories above the file
//   - cache: resized images, key searched anywhere in the path
//
// # Case folding
//
// In case-insensitive mode keys are lower-cased, and the ReferenceSet must be
// built with the same flag. Check refuses a mismatched set with ErrFoldMismatch.
//
// # Usage
//
//	engine := reconcile.NewEngine(afero.NewOsFs(), logger)
//	refs := reconcile.NewReferenceSet(ids, false)
//	plan, err := engine.Scan(ctx, reconcile.Options{Root: root, DryRun: true}, refs, nil)
package reconcile
