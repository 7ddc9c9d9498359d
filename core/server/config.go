package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReferenceTTLSeconds caches the catalog reference set between requests. Zero disables the cache.
	ReferenceTTLSeconds int `mapstructure:"reference_ttl_seconds" default:"300" validate:"gte=0"`
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `mapstructure:"metrics_enabled" default:"true"`
}

// ReferenceTTL returns the reference cache lifetime.
func (c Config) ReferenceTTL() time.Duration {
	if c.ReferenceTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReferenceTTLSeconds) * time.Second
}
