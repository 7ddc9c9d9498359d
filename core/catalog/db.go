package catalog

import (
	"context"
	"fmt"

	"media-cleaner/core/database"

	"gorm.io/gorm"
)

// DBSource reads gallery values straight from the catalog database.
type DBSource struct {
	db    *gorm.DB
	table string
}

// NewDBSource creates a source reading the value column of table.
func NewDBSource(db *gorm.DB, table string) *DBSource {
	return &DBSource{db: db, table: table}
}

// Name implements Source.
func (s *DBSource) Name() string {
	return "database:" + s.table
}

// Load verifies the gallery schema and returns every non-null value.
func (s *DBSource) Load(ctx context.Context) ([]string, error) {
	db := s.db.WithContext(ctx)

	columns, err := database.GetTableColumns(db, s.table)
	if err != nil {
		return nil, err
	}
	if !database.HasColumn(columns, "value") {
		return nil, fmt.Errorf("%w: %s.value", ErrMissingGallery, s.table)
	}

	var values []string
	if err := db.Table(s.table).Where("value IS NOT NULL").Pluck("value", &values).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.table, err)
	}
	return values, nil
}
