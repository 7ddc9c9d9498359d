// Package integrity provides health checks for the cleaner's dependencies.
//
// # Checks Provided
//
//   - Media: the media root exists and holds the product and product/cache folders.
//   - Catalog: the media gallery table has the columns references are read from.
//   - Storage: the bucket exists and the reference export (when used) is readable.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/media : Runs the media check (supports ?fix=true).
//   - GET /integrity/catalog : Runs the catalog schema check.
//   - GET /integrity/storage : Runs the storage check.
package integrity
