// Package catalog loads the reference identifiers still used by the catalog.
//
// Identifiers are the gallery "value" strings (e.g. "/a/b/photo.jpg"). They
// can come from three places, selected by catalog.source:
//
//   - database: the catalog_product_entity_media_gallery table (MySQL or sqlite)
//   - file: a newline separated export on local disk
//   - storage: the same export stored in an S3/MinIO bucket
//
// Every implementation satisfies Source, so the cleaner never knows where its
// references came from.
package catalog
