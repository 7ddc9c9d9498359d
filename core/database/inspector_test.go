package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	cfg := Config{
		Driver: DriverSQLite,
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// Create a test table
	err = db.Exec("CREATE TABLE catalog_product_entity_media_gallery (value_id INTEGER PRIMARY KEY, attribute_id INTEGER, value TEXT)").Error
	assert.NoError(t, err)

	// Test GetTableColumns
	columns, err := GetTableColumns(db, "catalog_product_entity_media_gallery")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	// Map columns to map for easy assertion
	colMap := make(map[string]string)
	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col.Type
		byName[col.Field] = col
	}
	assert.Equal(t, "PRI", byName["value_id"].Key)
	assert.Equal(t, "YES", byName["value"].Null)

	assert.Equal(t, "integer", colMap["value_id"])
	assert.Equal(t, "integer", colMap["attribute_id"])
	assert.Equal(t, "text", colMap["value"])
	assert.True(t, HasColumn(columns, "VALUE"))
	assert.False(t, HasColumn(columns, "position"))

	// Test non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	// PRAGMA table_info returns empty result for non-existent table in SQLite, implies no error but empty columns
	assert.NoError(t, err)
	assert.Empty(t, cols)
}
