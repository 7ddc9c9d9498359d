// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the skipped ones.
//   - rayid: assigns a RayID to each request, stores it for logger.WithRayID
//     and echoes it in the X-Ray-ID response header.
//
// Request metrics live in core/metrics.
package middleware
