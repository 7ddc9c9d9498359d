// Package database handles catalog database connections and schema inspection.
//
// It wraps GORM and configures either a MySQL connection (the catalog in
// production) or a pure-Go sqlite connection (local snapshots and tests).
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for both dialects. The
// integrity check and the catalog source use it to verify the gallery table
// before reading references from it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, cfg.Database.Table("catalog_product_entity_media_gallery"))
package database
