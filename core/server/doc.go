// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the API key protecting every
// route, how long the catalog reference set is cached between requests, and
// whether Prometheus metrics are exposed. The start command consumes it.
package server
