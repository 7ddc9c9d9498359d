// Package config provides configuration management for the media cleaner.
//
// It uses Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each
// section and are validated with the `validate` tags after loading.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, reference cache TTL, metrics toggle
//   - Database: catalog connection (mysql or sqlite) and table prefix
//   - Storage: S3/MinIO credentials, bucket and report prefix
//   - Log: level and format
//   - Media: root directory, enabled areas, limit, case folding, extra areas
//   - Catalog: where reference identifiers are read from
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Media.Root)
package config
