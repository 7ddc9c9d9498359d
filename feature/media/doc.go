// Package media exposes the reconciliation engine as a service.
//
// The Service loads the catalog references (cached for a TTL) while the media
// tree is enumerated, then checks both together into a Plan. The CLI applies
// plans after confirmation; the HTTP handler only ever reports them.
//
// # HTTP Endpoints
//
//   - GET /media/unused : dry-run plan (query: limit, include, case_insensitive, show_paths)
//   - GET /media/areas : configured areas in classification order
//   - POST /media/references/refresh : drops the cached reference set and reloads it
package media
