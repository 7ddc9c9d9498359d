package checks

import (
	"fmt"
	"reflect"
	"strings"

	"media-cleaner/core/database"

	"gorm.io/gorm"
)

// GalleryEntry is the part of the media gallery table the cleaner relies on.
type GalleryEntry struct {
	ValueID     uint   `gorm:"column:value_id;type:int;primaryKey"`
	AttributeID uint   `gorm:"column:attribute_id;type:smallint"`
	Value       string `gorm:"column:value;type:varchar"`
}

// CatalogReport strictly types the result of a catalog schema check.
type CatalogReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckCatalog verifies the gallery table against GalleryEntry.
func CheckCatalog(db *gorm.DB, table string) (*CatalogReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &CatalogReport{
		Table:          table,
		Matched:        true,
		MissingColumns: []string{},
		TypeMismatches: []string{},
	}

	actualCols, err := database.GetTableColumns(db, table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
		report.Matched = false
		return report, nil
	}
	if len(actualCols) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("Table %s has no columns or does not exist", table))
		report.Matched = false
		return report, nil
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	model := reflect.TypeOf(GalleryEntry{})
	for i := 0; i < model.NumField(); i++ {
		tag := model.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(tag)
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			report.MissingColumns = append(report.MissingColumns, colName)
			report.Matched = false
			continue
		}

		// Soft check: "int" matches "int(10) unsigned" and sqlite "integer".
		if expType := strings.ToLower(parseGormType(tag)); expType != "" && !strings.Contains(actCol.Type, expType) {
			report.TypeMismatches = append(report.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			report.Matched = false
		}
	}

	return report, nil
}

func parseGormColumn(tag string) string {
	return gormTagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return gormTagValue(tag, "type:")
}

func gormTagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
